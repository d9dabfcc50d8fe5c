// Package enum provides a pflag.Value that only accepts one of a fixed set of values.
package enum

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

const Type = "enum"

// Flag holds one of its options. The first option is the default.
type Flag struct {
	value   string
	options []string
}

// New returns a Flag accepting options, set to the first of them.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("options must not be empty")
	}
	return &Flag{value: options[0], options: slices.Clone(options)}
}

func (f *Flag) Type() string {
	return Type
}

func (f *Flag) String() string {
	return f.value
}

func (f *Flag) Set(value string) error {
	if !slices.Contains(f.options, value) {
		return fmt.Errorf("%q is not valid, expected one of %q", value, f.options)
	}
	f.value = value
	return nil
}

// Options returns the accepted values in their declared order.
func (f *Flag) Options() []string {
	return slices.Clone(f.options)
}

func Var(f *pflag.FlagSet, name string, options []string, usage string) {
	VarP(f, name, "", options, usage)
}

func VarP(f *pflag.FlagSet, name, shorthand string, options []string, usage string) {
	f.VarP(New(options...), name, shorthand, fmt.Sprintf("%s\n(one of %v)", usage, options))
}

// Get returns the value of the enum flag name.
func Get(f *pflag.FlagSet, name string) (string, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag accessed but not defined: %s", name)
	}
	if flag.Value.Type() != Type {
		return "", fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return flag.Value.String(), nil
}
