package params

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the serializable form of a Table.
type Definition struct {
	Name      string         `yaml:"name"`
	Scale14   float64        `yaml:"scale14"`
	Elements  []ElementDef   `yaml:"elements"`
	Nonbonded []NonbondedDef `yaml:"nonbonded_pairs,omitempty"`
	Stretch   []StretchDef   `yaml:"stretch"`
	Bend      []BendDef      `yaml:"bend"`
	Torsion   []TorsionDef   `yaml:"torsion"`
}

type ElementDef struct {
	Element int     `yaml:"element"`
	Symbol  string  `yaml:"symbol"`
	Mass    float64 `yaml:"mass"`
	Radius  float64 `yaml:"radius"`
	Epsilon float64 `yaml:"epsilon"`
}

type NonbondedDef struct {
	Elements [2]int  `yaml:"elements,flow"`
	Distance float64 `yaml:"distance"`
	Epsilon  float64 `yaml:"epsilon"`
}

type StretchDef struct {
	Elements  [2]int  `yaml:"elements,flow"`
	Stiffness float64 `yaml:"stiffness"`
	Length    float64 `yaml:"length"`
	Cubic     float64 `yaml:"cubic"`
	Quintic   float64 `yaml:"quintic"`
	Sextic    float64 `yaml:"sextic"`
	WellDepth float64 `yaml:"well_depth,omitempty"`
}

type BendDef struct {
	Elements    [3]int     `yaml:"elements,flow"`
	Stiffness   float64    `yaml:"stiffness"`
	Angles      [3]float64 `yaml:"angles,flow"`
	StretchBend float64    `yaml:"stretch_bend"`
	BendBend    float64    `yaml:"bend_bend"`
}

type TorsionDef struct {
	Elements        [4]int  `yaml:"elements,flow"`
	V1              float64 `yaml:"v1"`
	V2              float64 `yaml:"v2"`
	V3              float64 `yaml:"v3"`
	V2Fold          int     `yaml:"v2_fold"`
	TorsionStretch  float64 `yaml:"torsion_stretch"`
	BendTorsionBend float64 `yaml:"bend_torsion_bend"`
}

// NewTable validates a definition and freezes it into a Table.
func NewTable(def Definition) (*Table, error) {
	if def.Scale14 < 0 || def.Scale14 > 1 {
		return nil, fmt.Errorf("params: scale14 %g outside [0,1]", def.Scale14)
	}

	elems := make([]entry[Element], 0, len(def.Elements))
	for _, e := range def.Elements {
		if e.Element <= 0 || e.Mass <= 0 {
			return nil, fmt.Errorf("params: element %d needs a positive number and mass", e.Element)
		}
		elems = append(elems, entry[Element]{
			key: ElementKey(e.Element),
			val: Element{Symbol: e.Symbol, Mass: e.Mass, Radius: e.Radius, Epsilon: e.Epsilon},
		})
	}

	pairs := make([]entry[Nonbonded], 0, len(def.Nonbonded))
	for _, p := range def.Nonbonded {
		pairs = append(pairs, entry[Nonbonded]{
			key: PairKey(p.Elements[0], p.Elements[1]),
			val: Nonbonded{Distance: p.Distance, Epsilon: p.Epsilon},
		})
	}

	stretch := make([]entry[Stretch], 0, len(def.Stretch))
	for _, s := range def.Stretch {
		if s.Length <= 0 {
			return nil, fmt.Errorf("params: stretch %v needs a positive length", s.Elements)
		}
		if s.WellDepth < 0 {
			return nil, fmt.Errorf("params: stretch %v well depth must not be negative", s.Elements)
		}
		stretch = append(stretch, entry[Stretch]{
			key: PairKey(s.Elements[0], s.Elements[1]),
			val: Stretch{Stiffness: s.Stiffness, Length: s.Length, Cubic: s.Cubic, Quintic: s.Quintic, Sextic: s.Sextic, WellDepth: s.WellDepth},
		})
	}

	bend := make([]entry[Bend], 0, len(def.Bend))
	for _, b := range def.Bend {
		bend = append(bend, entry[Bend]{
			key: AngleKey(b.Elements[0], b.Elements[1], b.Elements[2]),
			val: Bend{Stiffness: b.Stiffness, Angles: b.Angles, StretchBend: b.StretchBend, BendBend: b.BendBend},
		})
	}

	torsion := make([]entry[Torsion], 0, len(def.Torsion))
	for _, tr := range def.Torsion {
		fold := tr.V2Fold
		if fold == 0 {
			fold = 2
		}
		torsion = append(torsion, entry[Torsion]{
			key: TorsionKey(tr.Elements[0], tr.Elements[1], tr.Elements[2], tr.Elements[3]),
			val: Torsion{V1: tr.V1, V2: tr.V2, V3: tr.V3, V2Fold: fold, TorsionStretch: tr.TorsionStretch, BendTorsionBend: tr.BendTorsionBend},
		})
	}

	t := &Table{name: def.Name, scale14: def.Scale14}
	var err error
	if t.elements, err = build("element", elems); err != nil {
		return nil, err
	}
	if t.pairs, err = build("nonbonded pair", pairs); err != nil {
		return nil, err
	}
	if t.stretch, err = build("stretch", stretch); err != nil {
		return nil, err
	}
	if t.bend, err = build("bend", bend); err != nil {
		return nil, err
	}
	if t.torsion, err = build("torsion", torsion); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadYAML reads a parameter definition file and builds its table.
func LoadYAML(path string) (*Table, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return NewTable(*def)
}

func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("params: read %s: %w", path, err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("params: parse %s: %w", path, err)
	}
	return &def, nil
}

// Save writes the definition as YAML.
func (d *Definition) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (d *Definition) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
