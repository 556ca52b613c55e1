package regs

// Field describes a bit span inside a byte-wide hardware register.
type Field struct {
	Index uint8
	Size  uint8
}

// Register is a byte-wide hardware register split into named bit fields.
// Writes through SetField or SetReg keep the raw byte and the decomposed
// field values in sync, so readers can use whichever view is convenient.
type Register struct {
	fields map[string]Field
	values map[string]uint8
	Reg    uint8
}

func (r *Register) SetField(key string, value uint8) {
	field, ok := r.fields[key]
	if !ok {
		return
	}

	mask := uint8((^(0xFF << field.Size) & 0xFF) << field.Index)
	negativeMask := ^mask
	r.SetReg((r.Reg & negativeMask) | (mask & (value << field.Index)))
}

func (r *Register) SetReg(value uint8) {
	r.Reg = value
	for key := range r.fields {
		internalField := r.fields[key]
		mask := uint8((^(0xFF << internalField.Size) & 0xFF) << internalField.Index)
		r.values[key] = (r.Reg & mask) >> internalField.Index
	}
}

func (r *Register) GetField(key string) uint8 {
	field, ok := r.values[key]
	if !ok {
		panic("Field " + key + " not found")
	}
	return field
}

// GetFlag reads a single-bit field as a bool.
func (r *Register) GetFlag(key string) bool {
	return r.GetField(key) != 0
}

func (r *Register) allFields() map[string]uint8 {
	out := make(map[string]uint8)
	for k := range r.fields {
		out[k] = r.GetField(k)
	}
	return out
}

func CreateRegister(fields map[string]Field) Register {
	reg := Register{
		fields: fields,
		Reg:    uint8(0),
		values: make(map[string]uint8),
	}
	for key := range reg.fields {
		reg.values[key] = 0
	}
	return reg
}
