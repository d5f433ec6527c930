package entity

// Diagnosis is the human-readable explanation attached to a feed when a
// problem is found. Messages carry their original leading space so a
// report line is the plain concatenation of URL and diagnosis.
type Diagnosis string

// NoDiagnosis marks a feed with no problem. Such feeds never appear in
// the report.
const NoDiagnosis Diagnosis = ""

// None reports whether the diagnosis is empty.
func (d Diagnosis) None() bool {
	return d == NoDiagnosis
}
