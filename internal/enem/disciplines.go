package enem

import "strings"

// Discipline is a user-facing subject-matter key.
type Discipline string

const (
	DisciplineLinguagens Discipline = "linguagens"
	DisciplineHumanas    Discipline = "ciencias-humanas"
	DisciplineNatureza   Discipline = "ciencias-natureza"
	DisciplineMatematica Discipline = "matematica"
)

// disciplineLabels maps a user-facing key to the source API's discipline label.
var disciplineLabels = map[Discipline]string{
	DisciplineLinguagens: "linguagens",
	DisciplineHumanas:    "ciencias-humanas",
	DisciplineNatureza:   "ciencias-natureza",
	DisciplineMatematica: "matematica",
}

// initialOffsets holds the known exam-sheet positions of each section.
// They are scan hints only; label filtering is authoritative.
var initialOffsets = map[Discipline]int{
	DisciplineLinguagens: 0,
	DisciplineHumanas:    45,
	DisciplineNatureza:   90,
	DisciplineMatematica: 135,
}

// ParseDiscipline normalizes a raw discipline key. Empty input is valid
// and means "no filter".
func ParseDiscipline(raw string) (Discipline, bool) {
	key := Discipline(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return "", true
	}
	if _, ok := disciplineLabels[key]; ok {
		return key, true
	}
	return "", false
}

// Label returns the source API label for the discipline.
func (d Discipline) Label() string {
	return disciplineLabels[d]
}

// InitialOffset returns the offset where the discipline's section is
// expected to start on the exam sheet.
func (d Discipline) InitialOffset() int {
	return initialOffsets[d]
}

// Matches reports whether a question belongs to the discipline. An empty
// discipline matches everything.
func (d Discipline) Matches(q Question) bool {
	if d == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(q.Discipline), d.Label())
}
