package main

import "github.com/alecthomas/kingpin/v2"

// optional records a flag value together with whether the user gave it, so
// updates only send the fields that were asked for.
type optional[T any] struct {
	value T
	set   bool
}

// get returns nil unless the flag was given.
func (o *optional[T]) get() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

func optionalString(f *kingpin.FlagClause) *optional[string] {
	o := &optional[string]{}
	f.IsSetByUser(&o.set).StringVar(&o.value)
	return o
}

func optionalInt32(f *kingpin.FlagClause) *optional[int32] {
	o := &optional[int32]{}
	f.IsSetByUser(&o.set).Int32Var(&o.value)
	return o
}

func optionalStrings(f *kingpin.FlagClause) *optional[[]string] {
	o := &optional[[]string]{}
	f.IsSetByUser(&o.set).StringsVar(&o.value)
	return o
}
