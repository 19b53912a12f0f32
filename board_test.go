package sbcio

import (
	"strings"
	"testing"
)

func TestBuiltinBoards(t *testing.T) {
	boards := Boards()
	for name, base := range map[string]int64{
		"raspberrypi":  0x20000000,
		"raspberrypi2": 0x3F000000,
		"raspberrypi4": 0xFE000000,
	} {
		b := boards[name]
		if b == nil {
			t.Fatalf("no built-in board called %s", name)
		}
		if b.PeripheralBase != base {
			t.Errorf("%s peripheral base is %#x, want %#x", name, b.PeripheralBase, base)
		}
		if b.GPIOBase() != base+0x200000 {
			t.Errorf("%s gpio base is %#x, want %#x", name, b.GPIOBase(), base+0x200000)
		}
	}
}

func TestBoardLookup(t *testing.T) {
	b := RaspberryPi2()

	spec, e := b.Lookup("GPIO18")
	if e != nil {
		t.Fatal(e)
	}
	if spec.BCM != 18 {
		t.Errorf("GPIO18 resolves to bcm %d", spec.BCM)
	}
	if !spec.Capabilities.Has(CAP_PWM) || spec.AltFunc != 5 || spec.PWMChannel != 0 {
		t.Errorf("GPIO18 pwm wiring is alt %d channel %d caps %s, want alt 5 channel 0 with pwm",
			spec.AltFunc, spec.PWMChannel, spec.Capabilities)
	}

	if spec, _ = b.Lookup("GPIO19"); spec == nil || spec.PWMChannel != 1 {
		t.Error("GPIO19 should carry pwm channel 1")
	}

	// Case sensitive, no fuzzy matching.
	if _, e = b.Lookup("gpio18"); e == nil {
		t.Error("lookup should be case sensitive")
	}
	if _, e = b.Lookup("GPIO99"); e == nil {
		t.Error("lookup of an unknown pin should fail")
	}
}

func TestBoardPinConstructors(t *testing.T) {
	b := RaspberryPi()

	if _, e := b.MemPin("GPIO4"); e != nil {
		t.Errorf("MemPin(GPIO4): %s", e)
	}
	if _, e := b.FSPin("GPIO4"); e != nil {
		t.Errorf("FSPin(GPIO4): %s", e)
	}
	if _, e := b.PWM("GPIO18"); e != nil {
		t.Errorf("PWM(GPIO18): %s", e)
	}

	// GPIO4 has no pwm capability.
	if _, e := b.PWM("GPIO4"); e == nil {
		t.Error("PWM on a plain gpio pin should fail")
	}
}

func TestLoadBoard(t *testing.T) {
	src := `
name: customboard
peripheral_base: 0x3F000000
pins:
  - name: LED
    bcm: 16
    capabilities: [input, output]
  - name: SERVO
    bcm: 18
    capabilities: [input, output, pwm]
    alt: 5
    pwm_channel: 0
`
	b, e := LoadBoard(strings.NewReader(src))
	if e != nil {
		t.Fatal(e)
	}
	if b.Name != "customboard" || b.PeripheralBase != 0x3F000000 {
		t.Errorf("loaded board is %s at %#x", b.Name, b.PeripheralBase)
	}

	led, e := b.Lookup("LED")
	if e != nil {
		t.Fatal(e)
	}
	if led.BCM != 16 || led.Capabilities.Has(CAP_PWM) {
		t.Errorf("LED loaded as bcm %d caps %s", led.BCM, led.Capabilities)
	}

	servo, e := b.Lookup("SERVO")
	if e != nil {
		t.Fatal(e)
	}
	if !servo.Capabilities.Has(CAP_PWM) || servo.AltFunc != 5 || servo.PWMChannel != 0 {
		t.Errorf("SERVO loaded as alt %d channel %d caps %s", servo.AltFunc, servo.PWMChannel, servo.Capabilities)
	}
}

func TestLoadBoardRejectsIncomplete(t *testing.T) {
	cases := map[string]string{
		"no name":  "peripheral_base: 0x20000000\npins: [{name: A, bcm: 4}]",
		"no base":  "name: x\npins: [{name: A, bcm: 4}]",
		"no pins":  "name: x\nperipheral_base: 0x20000000",
		"bad cap":  "name: x\nperipheral_base: 1\npins: [{name: A, bcm: 4, capabilities: [warp]}]",
		"not yaml": "{{{",
	}
	for what, src := range cases {
		if _, e := LoadBoard(strings.NewReader(src)); e == nil {
			t.Errorf("board with %s loaded without error", what)
		}
	}
}

func TestCapabilityRoundTrip(t *testing.T) {
	cs := CapabilitySet{CAP_INPUT, CAP_OUTPUT, CAP_PWM}
	if cs.String() != "input,output,pwm" {
		t.Errorf("capability set renders as %q", cs.String())
	}
	if cs.Has(CAP_PWM) != true || (CapabilitySet{CAP_INPUT}).Has(CAP_PWM) {
		t.Error("capability membership is wrong")
	}
}
