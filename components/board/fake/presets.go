package fake

// IndirectValue is a preset for a register behind the page/offset window.
type IndirectValue struct {
	Addr, Page, Offset, Value byte
}

// APBValue is a preset for an APB register.
type APBValue struct {
	Addr     byte
	Register uint16
	Value    uint32
}

// PresetValues are the read values a bus starts with.
type PresetValues struct {
	Indirect []IndirectValue
	APB      []APBValue
}

// Apply writes the presets into bus.
func (p PresetValues) Apply(bus *Bus) {
	for _, v := range p.Indirect {
		bus.SetIndirect(v.Addr, v.Page, v.Offset, v.Value)
	}
	for _, v := range p.APB {
		bus.SetAPB(v.Addr, v.Register, v.Value)
	}
}

// BenchPresets models a healthy bench: the deserializer reads a temperature code of 0x9b
// (37 C), the DP source drives 2000x810 into the serializer, the deserializer has no FIFO overflow
// and measures a Vtotal of 940.
func BenchPresets() PresetValues {
	return PresetValues{
		Indirect: []IndirectValue{
			{Addr: 0x58, Page: 0x6c, Offset: 0x13, Value: 0x9b},
			{Addr: 0x58, Page: 0x50, Offset: 0x42, Value: 0x03},
			{Addr: 0x58, Page: 0x50, Offset: 0x43, Value: 0xac},
		},
		APB: []APBValue{
			{Addr: 0x18, Register: 0x500, Value: 2000},
			{Addr: 0x18, Register: 0x514, Value: 810},
			{Addr: 0x58, Register: 0x1cc, Value: 0},
		},
	}
}
