package domain

import "time"

// User is synced from the external identity provider on first sign-in.
// Key is the provider's identity; ID is assigned by the store.
type User struct {
	ID        string
	Key       string
	Username  string
	Name      string
	Image     string
	Bio       string
	Onboarded bool
	InfernoIDs []string // top-level infernos authored by this user
	CultIDs    []string // cults joined or created by this user
}

// Inferno is a post. A non-empty ParentID makes it a reply; ChildIDs keep
// reply order (insertion order, never re-sorted).
type Inferno struct {
	ID        string
	Text      string
	AuthorID  string
	CultID    string // empty when the inferno belongs to no cult
	CreatedAt time.Time
	ParentID  string
	ChildIDs  []string
}

// Cult is a community. Members is explicit: the creator is not a member
// unless they join.
type Cult struct {
	ID          string
	Key         string
	Username    string
	Name        string
	Image       string
	Bio         string
	CreatedByID string
	MemberIDs   []string
	InfernoIDs  []string
}

// Author is the summary attached to resolved tree nodes and member lists.
type Author struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

// InfernoNode is an inferno with its author resolved and children expanded
// to some depth. Children beyond the requested depth are left unexpanded.
type InfernoNode struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Author    Author         `json:"author"`
	CultID    string         `json:"cult_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ParentID  string         `json:"parent_id,omitempty"`
	Children  []*InfernoNode `json:"children"`
}

type InfernoPage struct {
	Items   []*InfernoNode `json:"items"`
	HasMore bool           `json:"has_more"`
}

// CultView is a cult with its creator and member list resolved.
type CultView struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Bio       string    `json:"bio"`
	CreatedBy Author    `json:"created_by"`
	Members   []*Author `json:"members"`
}

type CultPage struct {
	Items   []*CultView `json:"items"`
	HasMore bool        `json:"has_more"`
}

// CultPosts is a cult's feed view.
type CultPosts struct {
	Cult     *CultView      `json:"cult"`
	Infernos []*InfernoNode `json:"infernos"`
}

// AccountType selects whose posts FetchUserPosts lists.
type AccountType string

const (
	AccountUser AccountType = "User"
	AccountCult AccountType = "Cult"
)

// CultFilter narrows and orders FetchCults.
type CultFilter struct {
	Search   string
	Page     int
	PageSize int
	SortAsc  bool
}
