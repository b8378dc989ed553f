package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Status is the workflow state of a ticket. The board has one column per value.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus matches a status name case-insensitively. Dashes and
// underscores count as spaces so "in-progress" works on the command line.
func ParseStatus(value string) (Status, bool) {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(value))
	for _, known := range Statuses {
		if strings.EqualFold(string(known), normalized) {
			return known, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

type Role string

const (
	RoleDeveloper Role = "Developer"
	RoleManager   Role = "Manager"
)

type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "Planned"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "On Hold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

// Ref is a reference to another record. The API sends either the bare id or
// the populated object, depending on the endpoint.
type Ref struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	*r = Ref(decoded)
	return nil
}

// Ticket is the client's cached copy of a server ticket.
type Ticket struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Project     *Ref      `json:"projectId,omitempty"`
	Assignees   []Ref     `json:"assignees"`
	TimeSpent   float64   `json:"timeSpent"`
	Duration    float64   `json:"duration"`
	Remark      string    `json:"remark"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TicketInput is the body of create and full update requests.
type TicketInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ProjectID   string   `json:"projectId,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Assignees   []string `json:"assignees"`
	TimeSpent   float64  `json:"timeSpent"`
	Duration    float64  `json:"duration"`
	Remark      string   `json:"remark"`
}

// StatusPatch is the partial update sent when a card changes column.
type StatusPatch struct {
	Status Status `json:"status"`
}

type TicketPage struct {
	Tickets      []Ticket `json:"tickets"`
	TotalTickets int      `json:"totalTickets"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
}

type Project struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Manager     *Ref          `json:"managerId,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type ProjectInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	ManagerID   string        `json:"managerId,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	StartDate   string        `json:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty"`
}

type ProjectPage struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

type UserPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}

// LoginResult is the user record returned by the login endpoint, token included.
type LoginResult struct {
	User
	Token string `json:"token"`
}

// TimeLog is one entry of time spent on a ticket. Duration is in minutes.
type TimeLog struct {
	ID          string    `json:"_id"`
	TicketID    string    `json:"ticketId"`
	User        *Ref      `json:"userId,omitempty"`
	Duration    float64   `json:"duration"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
}

type TimeLogInput struct {
	TicketID    string  `json:"ticketId"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type Activity struct {
	ID         string    `json:"_id"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	EntityType string    `json:"entityType"`
	EntityName string    `json:"entityName"`
	User       *Ref      `json:"userId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ActivityPage struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Pages      int        `json:"pages"`
}

// ListParams are the query parameters shared by the list endpoints.
// Zero values are left out of the query.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Role   Role
	SortBy string
	Order  string
}

func (p ListParams) Values() url.Values {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.Role != "" {
		values.Set("role", string(p.Role))
	}
	if p.SortBy != "" {
		values.Set("sortBy", p.SortBy)
	}
	if p.Order != "" {
		values.Set("order", p.Order)
	}
	return values
}
