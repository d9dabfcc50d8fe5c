// Package file provides a path flag for the document to read.
package file

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/pflag"
)

// Type is the type name for the path flag.
const Type = "path"

// Stdin is the path that stands for standard input.
const Stdin = "-"

// Flag is a path flag. The file is looked up when the flag is set, but only
// opened by Open.
type Flag struct {
	path string
	info fs.FileInfo
}

func (f *Flag) String() string {
	return f.path
}

func (f *Flag) Type() string {
	return Type
}

func (f *Flag) Set(path string) error {
	f.path = path
	f.info = nil
	if f.IsStdin() {
		return nil
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		f.info = info
	case !os.IsNotExist(err):
		return fmt.Errorf("unable to stat path %q: %w", path, err)
	}
	return nil
}

// IsStdin reports whether the flag refers to standard input.
func (f *Flag) IsStdin() bool {
	return f.path == "" || f.path == Stdin
}

// Exists reports whether the path referred to an existing file when the flag was set.
func (f *Flag) Exists() bool {
	return f.info != nil
}

// Open opens the file, or returns stdin if the flag refers to standard input.
func (f *Flag) Open(stdin io.Reader) (io.ReadCloser, error) {
	switch {
	case f.IsStdin():
		return io.NopCloser(stdin), nil
	case !f.Exists():
		return nil, fmt.Errorf("file %q does not exist", f.path)
	case f.info.IsDir():
		return nil, fmt.Errorf("%q is a directory", f.path)
	}
	return os.Open(f.path)
}

func VarP(f *pflag.FlagSet, name, shorthand string, value string, usage string) {
	flag := &Flag{}
	_ = flag.Set(value)
	f.VarP(flag, name, shorthand, usage)
}

func Get(f *pflag.FlagSet, name string) (*Flag, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return nil, fmt.Errorf("flag accessed but not defined: %s", name)
	}
	val, ok := flag.Value.(*Flag)
	if !ok {
		return nil, fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return val, nil
}
