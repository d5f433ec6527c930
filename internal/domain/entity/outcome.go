package entity

import "fmt"

// ProbeStatus is the network-level classification of a single feed probe.
type ProbeStatus int

const (
	// ProbeHealthy covers every HTTP status that is not a diagnosable
	// problem, including 2xx. A healthy probe still routes to the
	// content-level freshness check: reachability alone does not prove
	// the feed is being updated.
	ProbeHealthy ProbeStatus = iota

	// ProbeRedirect is any 3xx response. The Location header is captured
	// verbatim and may be empty.
	ProbeRedirect

	// ProbeForbidden is an HTTP 403 response.
	ProbeForbidden

	// ProbeNotFound is an HTTP 404 response.
	ProbeNotFound

	// ProbeTimeout means the probe exceeded its deadline.
	ProbeTimeout

	// ProbeHostUnresolved means the host name is malformed or did not resolve.
	ProbeHostUnresolved

	// ProbeConnectionFailed is a connection-level failure such as a
	// refused or reset connection or a broken pipe.
	ProbeConnectionFailed

	// ProbeBadResponse means the server answered with bytes that are not
	// a valid HTTP response.
	ProbeBadResponse

	// ProbeError is an unclassified fetch failure. Like ProbeHealthy it
	// routes to the freshness check rather than producing a message.
	ProbeError
)

// String returns the metric label for the status.
func (s ProbeStatus) String() string {
	switch s {
	case ProbeHealthy:
		return "healthy"
	case ProbeRedirect:
		return "redirect"
	case ProbeForbidden:
		return "forbidden"
	case ProbeNotFound:
		return "not_found"
	case ProbeTimeout:
		return "timeout"
	case ProbeHostUnresolved:
		return "host_unresolved"
	case ProbeConnectionFailed:
		return "connection_failed"
	case ProbeBadResponse:
		return "bad_response"
	case ProbeError:
		return "error"
	default:
		return "unknown"
	}
}

// ProbeOutcome is the tagged result of one network probe of a feed URL.
type ProbeOutcome struct {
	Status ProbeStatus

	// Location holds the Location header for ProbeRedirect, verbatim.
	Location string

	// Reason holds the underlying error text for ProbeError.
	Reason string
}

// Terminal reports whether the outcome yields a diagnosis by itself.
// Non-terminal outcomes (ProbeHealthy, ProbeError) fall through to the
// content-level freshness check.
func (o ProbeOutcome) Terminal() bool {
	return o.Status != ProbeHealthy && o.Status != ProbeError
}

// Diagnosis maps a terminal outcome to its report message.
// Non-terminal outcomes carry no diagnosis.
func (o ProbeOutcome) Diagnosis() Diagnosis {
	switch o.Status {
	case ProbeRedirect:
		return Diagnosis(" Redirect ... new URI: " + o.Location)
	case ProbeForbidden:
		return " Forbidden"
	case ProbeNotFound:
		return " Not found"
	case ProbeTimeout:
		return " Connection timed out"
	case ProbeHostUnresolved:
		return " Host could not be resolved"
	case ProbeConnectionFailed:
		return " Connection failed"
	case ProbeBadResponse:
		return " Bad HTTP response"
	default:
		return NoDiagnosis
	}
}

// StalenessStatus is the result class of the content-level fallback check.
type StalenessStatus int

const (
	// StalenessFresh means the newest item is within the configured age
	// threshold. Future-dated items yield a negative age and count as
	// fresh: the comparison is a strict greater-than against a positive
	// threshold.
	StalenessFresh StalenessStatus = iota

	// StalenessStale means the newest item is older than the threshold.
	StalenessStale

	// StalenessUnparsable means the body could not be fetched or parsed
	// as a feed.
	StalenessUnparsable

	// StalenessAgeUnknown means the document parsed but no publication
	// date could be extracted from the newest item.
	StalenessAgeUnknown
)

// String returns the metric label for the status.
func (s StalenessStatus) String() string {
	switch s {
	case StalenessFresh:
		return "fresh"
	case StalenessStale:
		return "stale"
	case StalenessUnparsable:
		return "unparsable"
	case StalenessAgeUnknown:
		return "age_unknown"
	default:
		return "unknown"
	}
}

// StalenessOutcome is the result of the content-level fallback check.
type StalenessOutcome struct {
	Status StalenessStatus

	// AgeDays is the whole number of days since the newest item was
	// published. Only meaningful for StalenessStale.
	AgeDays int
}

// Diagnosis maps the outcome to its report message. Fresh feeds carry
// no diagnosis and are omitted from the report.
func (o StalenessOutcome) Diagnosis() Diagnosis {
	switch o.Status {
	case StalenessStale:
		return Diagnosis(fmt.Sprintf(" is out of date. Age: %d days without an update", o.AgeDays))
	case StalenessUnparsable:
		return " feed isn't well formed and couldn't be parsed"
	case StalenessAgeUnknown:
		return " age could not be checked"
	default:
		return NoDiagnosis
	}
}
