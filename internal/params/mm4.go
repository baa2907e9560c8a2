package params

// MM4Definition returns the MM4 hydrocarbon parameter set.
func MM4Definition() Definition {
	return Definition{
		Name:    "mm4-hydrocarbon",
		Scale14: 0.550,
		Elements: []ElementDef{
			{Element: Hydrogen, Symbol: "H", Mass: 1.008, Radius: 1.640, Epsilon: 0.017},
			{Element: Carbon, Symbol: "C", Mass: 12.011, Radius: 1.960, Epsilon: 0.037},
		},
		Nonbonded: []NonbondedDef{
			{Elements: [2]int{Hydrogen, Carbon}, Distance: 3.440, Epsilon: 0.024},
		},
		Stretch: []StretchDef{
			{Elements: [2]int{Hydrogen, Carbon}, Stiffness: 4.740, Length: 1.112, Cubic: 2.200, Quintic: 1.0 / 4, Sextic: 31.0 / 360, WellDepth: 0.671},
			{Elements: [2]int{Carbon, Carbon}, Stiffness: 4.550, Length: 1.527, Cubic: 3.000, Quintic: 0.030, Sextic: 0.170, WellDepth: 0.556},
		},
		Bend: []BendDef{
			{Elements: [3]int{Hydrogen, Carbon, Hydrogen}, Stiffness: 0.540, Angles: [3]float64{107.70, 107.80, 107.70}},
			{Elements: [3]int{Hydrogen, Carbon, Carbon}, Stiffness: 0.590, Angles: [3]float64{108.90, 109.47, 110.80}, StretchBend: 0.100, BendBend: 0.350},
			{Elements: [3]int{Carbon, Carbon, Carbon}, Stiffness: 0.740, Angles: [3]float64{109.50, 110.40, 111.80}, StretchBend: 0.140, BendBend: 0.204},
		},
		Torsion: []TorsionDef{
			{Elements: [4]int{Hydrogen, Carbon, Carbon, Hydrogen}, V2: 0.008, V3: 0.260, V2Fold: 6, TorsionStretch: 0.660, BendTorsionBend: -0.090},
			{Elements: [4]int{Hydrogen, Carbon, Carbon, Carbon}, V3: 0.290, V2Fold: 2, TorsionStretch: 0.660, BendTorsionBend: -0.060},
			{Elements: [4]int{Carbon, Carbon, Carbon, Carbon}, V1: 0.239, V2: 0.024, V3: 0.637, V2Fold: 2, TorsionStretch: 0.660},
		},
	}
}

// MM4 returns the built-in hydrocarbon table.
func MM4() *Table {
	t, err := NewTable(MM4Definition())
	if err != nil {
		panic(err)
	}
	return t
}
