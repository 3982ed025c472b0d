package models

import "strings"

type OrderStatus int

const (
	StatusRejected OrderStatus = -1
	StatusDefault  OrderStatus = 0
	StatusInWork   OrderStatus = 1
	StatusDone     OrderStatus = 2
)

var statusNames = map[OrderStatus]string{
	StatusRejected: "Rejected",
	StatusDefault:  "Default",
	StatusInWork:   "InWork",
	StatusDone:     "Done",
}

func (s OrderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusDefault]
}

// ParseOrderStatus accepts a status name, case-insensitively.
func ParseOrderStatus(name string) (OrderStatus, bool) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, true
		}
	}
	return 0, false
}
