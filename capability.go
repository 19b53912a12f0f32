package sbcio

// Definitions for capabilities.
import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Define a generic way to represent pin capabilities.
type Capability int

const (
	CAP_INPUT  Capability = iota // digital input
	CAP_OUTPUT                   // digital output
	CAP_PWM                      // hardware pwm output
)

// This represents the set of capabilities that a pin has. Multiple pins on
// a board may share an identical capability set.
type CapabilitySet []Capability

func (c Capability) String() string {
	switch c {
	case CAP_INPUT:
		return "input"
	case CAP_OUTPUT:
		return "output"
	case CAP_PWM:
		return "pwm"
	}
	return ""
}

func (c Capability) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *Capability) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if e := node.Decode(&s); e != nil {
		return e
	}
	switch s {
	case "input":
		*c = CAP_INPUT
	case "output":
		*c = CAP_OUTPUT
	case "pwm":
		*c = CAP_PWM
	default:
		return fmt.Errorf("unknown pin capability %q", s)
	}
	return nil
}

func (cs CapabilitySet) String() string {
	s := []string{}
	for _, c := range cs {
		s = append(s, c.String())
	}
	return strings.Join(s, ",")
}

// Determine if the set contains a particular capability.
func (cs CapabilitySet) Has(cap Capability) bool {
	for _, v := range cs {
		if v == cap {
			return true
		}
	}
	return false
}
