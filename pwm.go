// Hardware PWM through the on-chip controller and its clock generator.
// Once started the signal runs autonomously with no CPU involvement; the
// process only touches registers again to retune or stop it.
//
// Register layout and the clock-manager password follow the BCM283x
// datasheet and the wiringPi source.

package sbcio

import (
	"fmt"
	"time"
)

// Word offsets within the PWM controller block, per channel.
const (
	pwmCtl    = 0
	pwmRange0 = 4
	pwmData0  = 5
	pwmRange1 = 8
	pwmData1  = 9
)

// Control register flags, channel 0 in the low byte, channel 1 in the high.
const (
	pwm0Enable uint32 = 0x0001
	pwm0MSMode uint32 = 0x0080 // mark/space rather than sigma-delta
	pwm1Enable uint32 = 0x0100
	pwm1MSMode uint32 = 0x8000
)

// Word offsets of the PWM clock generator within the clock-manager block.
const (
	clockPWMCtl = 40 // 0xA0
	clockPWMDiv = 41
)

const (
	clockPassword uint32 = 0x5A000000 // required in every clock-manager write
	clockEnable   uint32 = 1 << 4
	clockKill     uint32 = 1 << 5
	clockBusy     uint32 = 1 << 7
	clockSrcPLLD  uint32 = 6
)

// The reference clock is the 500 MHz PLLD; the oscillator is too slow for
// sub-microsecond periods.
const pwmRefClockHz = 500000000

const (
	// pwmSampleCount slots per period gives 0.1% duty resolution.
	pwmSampleCount = 1000

	// Periods below pwmShortPeriodNs get the sample count reduced by
	// pwmSampleReduction so the divisor stays achievable. Tuned values,
	// not hardware facts.
	pwmShortPeriodNs   = 750
	pwmSampleReduction = 10
)

// AltFunc is an alternate-function index, 0 through 5, selecting which
// peripheral owns a pin instead of plain GPIO.
type AltFunc int

// fselAltCode maps an alternate-function index to its 3-bit function-select
// code. The encoding is not linear: alt 0-3 sit above the input/output
// codes, alt 4 and 5 below them.
var fselAltCode = [6]uint32{4, 5, 6, 7, 3, 2}

// PWM generates a continuous rectangular signal on one pin through one of
// the controller's two channels. Construction binds pin, alternate
// function, channel and SoC base address without touching hardware; Init
// maps the register windows and muxes the pin.
type PWM struct {
	pin     Pin
	alt     AltFunc
	channel int
	base    int64

	gpio *MemMap
	pwm  *MemMap
	clk  *MemMap
}

// NewPWM binds a generator to a pin, its PWM alternate function, a channel
// (0 or 1) and the board's peripheral base address. Performs no I/O.
func NewPWM(pin Pin, alt AltFunc, channel int, peripheralBase int64) *PWM {
	return &PWM{pin: pin, alt: alt, channel: channel, base: peripheralBase}
}

// Init maps the GPIO, PWM and clock-manager register windows and switches
// the pin's function select to the bound alternate function.
func (p *PWM) Init() error {
	if p.channel != 0 && p.channel != 1 {
		return fmt.Errorf("pwm channel must be 0 or 1, got %d", p.channel)
	}
	if p.alt < 0 || int(p.alt) >= len(fselAltCode) {
		return fmt.Errorf("alternate function must be 0..5, got %d", p.alt)
	}

	var e error
	if p.gpio, e = OpenMemMap(p.base+gpioBlockOffset, gpioBlockLength); e != nil {
		return e
	}
	if p.pwm, e = OpenMemMap(p.base+pwmBlockOffset, pwmBlockLength); e != nil {
		return e
	}
	if p.clk, e = OpenMemMap(p.base+clockBlockOffset, clockBlockLength); e != nil {
		return e
	}

	word := uint32(p.pin) / 10
	shift := (uint32(p.pin) % 10) * 3
	p.gpio.ReadModifyWrite(gpioFSel+word, fselMask<<shift, fselAltCode[p.alt]<<shift)
	return nil
}

// Start emits a signal with the given period and duty cycle, in percent of
// the period spent high.
func (p *PWM) Start(periodNs int64, dutyPercent int) error {
	if dutyPercent < 0 || dutyPercent > 100 {
		return fmt.Errorf("duty cycle must be 0..100, got %d", dutyPercent)
	}
	if periodNs <= 0 {
		return fmt.Errorf("pwm period must be positive, got %d", periodNs)
	}
	return p.StartDuty(periodNs, periodNs*int64(dutyPercent)/100)
}

// StartDuty emits a signal with the high time given in nanoseconds rather
// than percent, for callers such as servo drivers that need finer duty
// resolution than whole percents. Retuning a running generator is fine: the
// clock is halted cleanly before any divisor change, reconfiguring a
// running clock being undefined on the hardware.
func (p *PWM) StartDuty(periodNs, dutyNs int64) error {
	if p.pwm == nil {
		return fmt.Errorf("pwm on pin %d is not initialised", p.pin)
	}
	if periodNs <= 0 {
		return fmt.Errorf("pwm period must be positive, got %d", periodNs)
	}
	if dutyNs < 0 || dutyNs > periodNs {
		return fmt.Errorf("duty %dns does not fit the %dns period", dutyNs, periodNs)
	}

	// Halt the clock generator and let it settle.
	p.clk.Write(clockPWMCtl, clockPassword|clockKill)
	time.Sleep(10 * time.Microsecond)
	for p.clk.Read(clockPWMCtl)&clockBusy != 0 {
		time.Sleep(time.Microsecond)
	}

	samples := uint32(pwmSampleCount)
	if periodNs < pwmShortPeriodNs {
		samples /= pwmSampleReduction
	}
	sampleHz := uint32(uint64(samples) * 1e9 / uint64(periodNs))
	if sampleHz == 0 {
		return fmt.Errorf("pwm period %dns is below the minimum achievable frequency", periodNs)
	}
	divisor, scale := SolveClockDivisor(pwmRefClockHz, sampleHz)

	p.clk.Write(clockPWMDiv, clockPassword|divisor<<12)
	p.clk.Write(clockPWMCtl, clockPassword|clockEnable|clockSrcPLLD)

	// Program the channel with the controller disabled, then bring it up
	// in mark/space mode.
	ctl := p.pwm.Read(pwmCtl)
	p.pwm.Write(pwmCtl, 0)
	time.Sleep(10 * time.Microsecond)

	rangeVal := samples * scale
	dataVal := uint32(uint64(rangeVal) * uint64(dutyNs) / uint64(periodNs))

	rangeReg, dataReg := uint32(pwmRange0), uint32(pwmData0)
	enable := pwm0Enable | pwm0MSMode
	chanMask := pwm0Enable | pwm0MSMode
	if p.channel == 1 {
		rangeReg, dataReg = pwmRange1, pwmData1
		enable = pwm1Enable | pwm1MSMode
		chanMask = pwm1Enable | pwm1MSMode
	}

	p.pwm.Write(rangeReg, rangeVal)
	time.Sleep(10 * time.Microsecond)
	p.pwm.Write(dataReg, dataVal)
	p.pwm.Write(pwmCtl, (ctl&^chanMask)|enable)
	return nil
}

// Stop disables the channel; the signal ceases immediately. The clock
// generator is left running, Start re-kills it anyway.
func (p *PWM) Stop() error {
	if p.pwm == nil {
		return fmt.Errorf("pwm on pin %d is not initialised", p.pin)
	}
	mask := pwm0Enable
	if p.channel == 1 {
		mask = pwm1Enable
	}
	p.pwm.ReadModifyWrite(pwmCtl, mask, 0)
	return nil
}

// Close releases the three register windows.
func (p *PWM) Close() error {
	for _, m := range []*MemMap{p.gpio, p.pwm, p.clk} {
		if m != nil {
			if e := m.Close(); e != nil {
				return e
			}
		}
	}
	p.gpio, p.pwm, p.clk = nil, nil, nil
	return nil
}
