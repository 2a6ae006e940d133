package intake

import "strings"

// Canonical field keys of an input record.
const (
	KeyPatientID     = "patient_id"
	KeyAge           = "age"
	KeySphere        = "sphere"
	KeyCylinder      = "cylinder"
	KeyK1Pre         = "k1_pre"
	KeyK2Pre         = "k2_pre"
	KeyPachymetryPre = "pachymetry_pre"
	KeyBCVAPre       = "bcva_pre"
	KeyOpticalZone   = "optical_zone"
)

var aliases = map[string]string{
	"patientid":   KeyPatientID,
	"patient":     KeyPatientID,
	"id":          KeyPatientID,
	"sph":         KeySphere,
	"cyl":         KeyCylinder,
	"k1":          KeyK1Pre,
	"k2":          KeyK2Pre,
	"pachymetry":  KeyPachymetryPre,
	"pachy_pre":   KeyPachymetryPre,
	"bcva":        KeyBCVAPre,
	"oz":          KeyOpticalZone,
	"opticalzone": KeyOpticalZone,
}

// NormalizeKey maps a header or JSON key to its canonical form: lower
// case, separators folded to underscores, known aliases resolved.
// Unknown keys are returned normalized but otherwise unchanged.
func NormalizeKey(k string) string {
	k = strings.TrimPrefix(k, "\ufeff")
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return '_'
		}
		return r
	}, k)
	for strings.Contains(k, "__") {
		k = strings.ReplaceAll(k, "__", "_")
	}
	if canonical, ok := aliases[k]; ok {
		return canonical
	}
	return k
}
