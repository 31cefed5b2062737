package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChamaType determines how contributions are split between the payout pool
// and personal savings.
type ChamaType string

const (
	ChamaTypeSavings      ChamaType = "savings"
	ChamaTypeMerryGoRound ChamaType = "merry_go_round"
	ChamaTypeHybrid       ChamaType = "hybrid"
)

// Valid reports whether t is a known chama type.
func (t ChamaType) Valid() bool {
	switch t {
	case ChamaTypeSavings, ChamaTypeMerryGoRound, ChamaTypeHybrid:
		return true
	}
	return false
}

// HasSavings reports whether contributions carry a savings portion.
func (t ChamaType) HasSavings() bool {
	return t == ChamaTypeSavings || t == ChamaTypeHybrid
}

type ChamaStatus string

const (
	ChamaStatusActive ChamaStatus = "active"
	ChamaStatusPaused ChamaStatus = "paused"
	ChamaStatusClosed ChamaStatus = "closed"
)

// Chama is a member-run rotating savings and credit association.
type Chama struct {
	ID         string
	Name       string
	Type       ChamaType
	Status     ChamaStatus
	MaxMembers int
	InviteCode string
	CreatedBy  string
	CreatedAt  time.Time

	// DefaultInterestRate is the percentage applied to loans that do not
	// specify their own rate.
	DefaultInterestRate decimal.Decimal
}

type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

type MemberStatus string

const (
	MemberStatusActive  MemberStatus = "active"
	MemberStatusRemoved MemberStatus = "removed"
)

// ChamaMember links a user to a chama.
type ChamaMember struct {
	ID       string
	ChamaID  string
	UserID   string
	Role     MemberRole
	Status   MemberStatus
	JoinedAt time.Time

	DisplayName string // filled from users at read time
}

// IsActiveAdmin reports whether the membership grants admin rights.
func (m *ChamaMember) IsActiveAdmin() bool {
	return m != nil && m.Status == MemberStatusActive && m.Role == RoleAdmin
}
