package sbcio

import "testing"

func TestOpenUARTMissingDevice(t *testing.T) {
	u, e := OpenUART("/dev/does-not-exist-sbcio", 115200)
	if e == nil {
		u.Close()
		t.Fatal("opening a nonexistent serial device should fail")
	}
}
