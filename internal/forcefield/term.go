package forcefield

import "github.com/san-kum/molsim/internal/dynamo"

// Kind tags the variant of a force term.
type Kind int

const (
	KindStretch Kind = iota
	KindBend
	KindBendBend
	KindTorsion
	KindBendTorsionBend
	KindNonbonded14
	KindNonbonded
	KindMorse
)

var Kinds = []Kind{KindStretch, KindMorse, KindBend, KindBendBend, KindTorsion, KindBendTorsionBend, KindNonbonded14, KindNonbonded}

func (k Kind) String() string {
	switch k {
	case KindStretch:
		return "stretch"
	case KindBend:
		return "bend"
	case KindBendBend:
		return "bend-bend"
	case KindTorsion:
		return "torsion"
	case KindBendTorsionBend:
		return "bend-torsion-bend"
	case KindNonbonded14:
		return "nonbonded-14"
	case KindNonbonded:
		return "nonbonded"
	case KindMorse:
		return "morse"
	}
	return "unknown"
}

// Term is a force term that knows its variant. Size is the number of
// relationships the term covers.
type Term interface {
	dynamo.Term
	Kind() Kind
	Size() int
}
