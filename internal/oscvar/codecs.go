package oscvar

type boolCodec struct{}

func (boolCodec) Encode(v bool) []interface{} { return []interface{}{v} }
func (boolCodec) Decode(args []interface{}) (bool, bool) {
	if len(args) != 1 {
		return false, false
	}
	b, ok := args[0].(bool)
	return b, ok
}

// Bool is the codec for bool-valued variables.
var Bool Codec[bool] = boolCodec{}

type int32Codec struct{}

func (int32Codec) Encode(v int32) []interface{} { return []interface{}{v} }
func (int32Codec) Decode(args []interface{}) (int32, bool) {
	if len(args) != 1 {
		return 0, false
	}
	i, ok := args[0].(int32)
	return i, ok
}

// Int32 is the codec for int32-valued variables.
var Int32 Codec[int32] = int32Codec{}

type float32Codec struct{}

func (float32Codec) Encode(v float32) []interface{} { return []interface{}{v} }
func (float32Codec) Decode(args []interface{}) (float32, bool) {
	if len(args) != 1 {
		return 0, false
	}
	f, ok := args[0].(float32)
	return f, ok
}

// Float32 is the codec for float32-valued variables.
var Float32 Codec[float32] = float32Codec{}

type intAsInt32Codec struct{}

func (intAsInt32Codec) Encode(v int) []interface{} { return []interface{}{int32(v)} }
func (intAsInt32Codec) Decode(args []interface{}) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	i, ok := args[0].(int32)
	return int(i), ok
}

// Size is the codec for size/count-valued variables (usize in the
// original), encoded over the wire as int32.
var Size Codec[int] = intAsInt32Codec{}

// LoopRange mirrors Option<(f32,f32)> from the source design: an
// absent range encodes as (0.0, 1.0) on the wire.
type LoopRange struct {
	Set  bool
	From float32
	To   float32
}

type loopRangeCodec struct{}

func (loopRangeCodec) Encode(v LoopRange) []interface{} {
	if !v.Set {
		return []interface{}{float32(0), float32(1)}
	}
	return []interface{}{v.From, v.To}
}
func (loopRangeCodec) Decode(args []interface{}) (LoopRange, bool) {
	if len(args) != 2 {
		return LoopRange{}, false
	}
	from, ok1 := args[0].(float32)
	to, ok2 := args[1].(float32)
	if !ok1 || !ok2 {
		return LoopRange{}, false
	}
	return LoopRange{Set: true, From: from, To: to}, true
}

// LoopRangeCodec is the codec for LoopRange-valued variables.
var LoopRangeCodec Codec[LoopRange] = loopRangeCodec{}
