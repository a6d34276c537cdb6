// Package policy holds the lifecycle vocabulary of a lease-guarantee policy:
// the status registry, actor and guarantor types, and the transition rules
// that decide which status changes are permitted.
package policy

import "strings"

// Status is a policy lifecycle state.
type Status string

const (
	StatusDraft                 Status = "DRAFT"
	StatusCollectingInfo        Status = "COLLECTING_INFO"
	StatusUnderInvestigation    Status = "UNDER_INVESTIGATION"
	StatusInvestigationRejected Status = "INVESTIGATION_REJECTED"
	StatusPendingApproval       Status = "PENDING_APPROVAL"
	StatusApproved              Status = "APPROVED"
	StatusContractPending       Status = "CONTRACT_PENDING"
	StatusContractSigned        Status = "CONTRACT_SIGNED"
	StatusActive                Status = "ACTIVE"
	StatusExpired               Status = "EXPIRED"
	StatusCancelled             Status = "CANCELLED"
)

// Color is the UI color class attached to a status badge.
type Color string

const (
	ColorGray   Color = "gray"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
)

type statusInfo struct {
	label      string
	color      Color
	rank       int
	filterable bool
	terminal   bool
}

// Branches share a rank: INVESTIGATION_REJECTED and PENDING_APPROVAL are
// alternatives after investigation, EXPIRED and CANCELLED are the two ends.
var registry = map[Status]statusInfo{
	StatusDraft:                 {label: "Borrador", color: ColorGray, rank: 0, filterable: true},
	StatusCollectingInfo:        {label: "Recopilando información", color: ColorBlue, rank: 1, filterable: true},
	StatusUnderInvestigation:    {label: "En investigación", color: ColorYellow, rank: 2, filterable: true},
	StatusInvestigationRejected: {label: "Investigación rechazada", color: ColorRed, rank: 3, filterable: true},
	StatusPendingApproval:       {label: "Pendiente de aprobación", color: ColorOrange, rank: 3, filterable: true},
	StatusApproved:              {label: "Aprobada", color: ColorGreen, rank: 4, filterable: true},
	StatusContractPending:       {label: "Contrato pendiente", color: ColorPurple, rank: 5},
	StatusContractSigned:        {label: "Contrato firmado", color: ColorPurple, rank: 6},
	StatusActive:                {label: "Activa", color: ColorGreen, rank: 7, filterable: true},
	StatusExpired:               {label: "Vencida", color: ColorGray, rank: 8, filterable: true, terminal: true},
	StatusCancelled:             {label: "Cancelada", color: ColorRed, rank: 8, filterable: true, terminal: true},
}

var ordered = []Status{
	StatusDraft,
	StatusCollectingInfo,
	StatusUnderInvestigation,
	StatusInvestigationRejected,
	StatusPendingApproval,
	StatusApproved,
	StatusContractPending,
	StatusContractSigned,
	StatusActive,
	StatusExpired,
	StatusCancelled,
}

// Statuses returns every registered status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(ordered))
	copy(out, ordered)
	return out
}

// ParseStatus resolves a raw value into a registered status. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := registry[s]
	return s, ok
}

// Valid reports whether s is a registered status.
func (s Status) Valid() bool {
	_, ok := registry[s]
	return ok
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

// LabelFor returns the display label of s, or the raw value when s is unknown.
func LabelFor(s Status) string {
	if info, ok := registry[s]; ok {
		return info.label
	}
	return string(s)
}

// ColorFor returns the UI color class of s.
func ColorFor(s Status) Color {
	if info, ok := registry[s]; ok {
		return info.color
	}
	return ColorGray
}

// IsFilterable reports whether s is offered as a filter in list views.
func IsFilterable(s Status) bool {
	return registry[s].filterable
}

// IsTerminal reports whether no further transitions leave s.
func IsTerminal(s Status) bool {
	return registry[s].terminal
}

// Rank is the position of s in the lifecycle; -1 for unknown statuses.
func Rank(s Status) int {
	info, ok := registry[s]
	if !ok {
		return -1
	}
	return info.rank
}

// StatusInfo is the serializable view of one registry entry.
type StatusInfo struct {
	Value      Status `json:"value"`
	Label      string `json:"label"`
	Color      Color  `json:"color"`
	Filterable bool   `json:"filterable"`
	Terminal   bool   `json:"terminal"`
}

// Describe returns the registry as an ordered list.
func Describe() []StatusInfo {
	out := make([]StatusInfo, 0, len(ordered))
	for _, s := range ordered {
		info := registry[s]
		out = append(out, StatusInfo{
			Value:      s,
			Label:      info.label,
			Color:      info.color,
			Filterable: info.filterable,
			Terminal:   info.terminal,
		})
	}
	return out
}
