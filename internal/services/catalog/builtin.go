package catalog

// builtinSchemas returns the default category schemas used when no
// schema directory is configured.
func builtinSchemas() []*CategorySchema {
	return []*CategorySchema{
		{
			Category: "sinks",
			Display:  "Kitchen & Bathroom Sinks",
			Tone:     "practical and detail-oriented, aimed at renovators and trade buyers",
			Attributes: []Attribute{
				{Name: "Material", Description: "e.g. stainless steel, fireclay, granite composite", Required: true},
				{Name: "Bowl configuration", Description: "single, 1.5 or double bowl"},
				{Name: "Overall width", Unit: "mm", Required: true},
				{Name: "Overall depth", Unit: "mm"},
				{Name: "Bowl depth", Unit: "mm"},
				{Name: "Mounting type", Description: "undermount, topmount, flushmount or butler"},
				{Name: "Waste size", Unit: "mm"},
				{Name: "Finish", Description: "e.g. brushed, gloss, matte"},
			},
		},
		{
			Category: "taps",
			Display:  "Taps & Mixers",
			Tone:     "clean and contemporary, highlighting design and water efficiency",
			Attributes: []Attribute{
				{Name: "Finish", Description: "e.g. chrome, matte black, brushed nickel", Required: true},
				{Name: "Mounting type", Description: "hob, wall or bench mounted"},
				{Name: "Spout height", Unit: "mm"},
				{Name: "Spout reach", Unit: "mm"},
				{Name: "WELS rating", Description: "star rating and flow rate"},
				{Name: "Cartridge type"},
				{Name: "Operation", Description: "mixer, pull-out, sensor"},
			},
		},
		{
			Category: "toilets",
			Display:  "Toilets & Suites",
			Tone:     "straightforward and reassuring, emphasising compliance and comfort",
			Attributes: []Attribute{
				{Name: "Suite type", Description: "back to wall, close coupled, wall hung or wall faced", Required: true},
				{Name: "Trap type", Description: "S-trap, P-trap or universal", Required: true},
				{Name: "Set out", Unit: "mm"},
				{Name: "Flush volume", Description: "full and half flush litres"},
				{Name: "WELS rating"},
				{Name: "Seat type", Description: "soft close, quick release"},
				{Name: "Pan height", Unit: "mm"},
			},
		},
		{
			Category: "baths",
			Display:  "Baths & Spas",
			Tone:     "warm and aspirational, focused on relaxation and form",
			Attributes: []Attribute{
				{Name: "Material", Description: "e.g. acrylic, stone composite, steel", Required: true},
				{Name: "Installation type", Description: "freestanding, drop-in, back to wall or corner", Required: true},
				{Name: "Length", Unit: "mm", Required: true},
				{Name: "Width", Unit: "mm"},
				{Name: "Depth", Unit: "mm"},
				{Name: "Capacity", Unit: "litres"},
				{Name: "Overflow", Description: "included or optional"},
			},
		},
	}
}
