package hrms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleEmployee       Role = "employee"
	RoleHROfficer      Role = "hr_officer"
	RolePayrollOfficer Role = "payroll_officer"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLeave   AttendanceStatus = "leave"
	AttendanceHalfDay AttendanceStatus = "half-day"
)

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// ID is a primary key. The backend uses integer and UUID keys depending on
// the resource, so both JSON numbers and strings are accepted.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := unmarshalScalar(b)
	if err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// Decimal is a monetary or fractional amount as sent by the backend, either
// as a JSON string ("1250.00") or as a number.
type Decimal string

func (d *Decimal) UnmarshalJSON(b []byte) error {
	s, err := unmarshalScalar(b)
	if err != nil {
		return fmt.Errorf("decoding decimal: %w", err)
	}
	*d = Decimal(s)
	return nil
}

func (d Decimal) String() string { return string(d) }

// Month is a payroll month, sent either as a number (11) or as a name
// ("November").
type Month string

func (m *Month) UnmarshalJSON(b []byte) error {
	s, err := unmarshalScalar(b)
	if err != nil {
		return fmt.Errorf("decoding month: %w", err)
	}
	*m = Month(s)
	return nil
}

func unmarshalScalar(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

type User struct {
	ID          ID      `json:"id"`
	Username    string  `json:"username,omitempty"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name,omitempty"`
	LastName    string  `json:"last_name,omitempty"`
	FullName    string  `json:"full_name,omitempty"`
	Role        Role    `json:"role,omitempty"`
	Department  string  `json:"department,omitempty"`
	Designation string  `json:"designation,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Salary      Decimal `json:"salary,omitempty"`
	JoinDate    string  `json:"join_date,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// DisplayName falls back from the full name to the first and last name and
// then to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Dashboard is the role specific greeting of the accounts dashboard.
type Dashboard struct {
	Role       Role   `json:"role"`
	Username   string `json:"username"`
	Department string `json:"department,omitempty"`
	Message    string `json:"message"`
}

type RegisterRequest struct {
	Username        string `json:"username,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Department      string `json:"department,omitempty"`
	Designation     string `json:"designation,omitempty"`
}

// UserInput is the payload of the administrative user endpoints. Empty
// fields are omitted so that Update only touches what is set.
type UserInput struct {
	Username        string  `json:"username,omitempty"`
	Email           string  `json:"email,omitempty"`
	Password        string  `json:"password,omitempty"`
	PasswordConfirm string  `json:"password_confirm,omitempty"`
	FirstName       string  `json:"first_name,omitempty"`
	LastName        string  `json:"last_name,omitempty"`
	Role            Role    `json:"role,omitempty"`
	Department      string  `json:"department,omitempty"`
	Designation     string  `json:"designation,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Salary          Decimal `json:"salary,omitempty"`
	Status          string  `json:"status,omitempty"`
}

// LoginResponse is the outcome of a login or a registration that issued
// tokens.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

type Attendance struct {
	ID           ID               `json:"id"`
	Employee     ID               `json:"employee,omitempty"`
	EmployeeName string           `json:"employee_name,omitempty"`
	Date         string           `json:"date"`
	Status       AttendanceStatus `json:"status"`
	CheckIn      string           `json:"check_in,omitempty"`
	CheckOut     string           `json:"check_out,omitempty"`
	HoursWorked  Decimal          `json:"hours_worked,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	MarkedAt     string           `json:"marked_at,omitempty"`
}

type AttendanceInput struct {
	Employee ID               `json:"employee,omitempty"`
	Date     string           `json:"date,omitempty"`
	Status   AttendanceStatus `json:"status,omitempty"`
	CheckIn  string           `json:"check_in,omitempty"`
	CheckOut string           `json:"check_out,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

type Leave struct {
	ID             ID          `json:"id"`
	Employee       ID          `json:"employee,omitempty"`
	EmployeeName   string      `json:"employee_name,omitempty"`
	LeaveType      string      `json:"leave_type"`
	StartDate      string      `json:"start_date"`
	EndDate        string      `json:"end_date"`
	DaysCount      int         `json:"days_count,omitempty"`
	Reason         string      `json:"reason"`
	Status         LeaveStatus `json:"status"`
	ApprovedBy     ID          `json:"approved_by,omitempty"`
	SentimentScore float64     `json:"sentiment_score,omitempty"`
	BurnoutRisk    bool        `json:"burnout_risk,omitempty"`
	CreatedAt      string      `json:"created_at,omitempty"`
}

type LeaveInput struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type LeaveBalance struct {
	ID       ID  `json:"id"`
	Employee ID  `json:"employee,omitempty"`
	Year     int `json:"year"`

	CasualAllocated int `json:"casual_allocated"`
	CasualUsed      int `json:"casual_used"`
	CasualRemaining int `json:"casual_remaining"`

	SickAllocated int `json:"sick_allocated"`
	SickUsed      int `json:"sick_used"`
	SickRemaining int `json:"sick_remaining"`

	PersonalAllocated int `json:"personal_allocated"`
	PersonalUsed      int `json:"personal_used"`
	PersonalRemaining int `json:"personal_remaining"`

	EarnedLeaveAllocated int `json:"earned_leave_allocated"`
	EarnedLeaveUsed      int `json:"earned_leave_used"`
	EarnedLeaveRemaining int `json:"earned_leave_remaining"`

	CompOffBalance Decimal `json:"comp_off_balance"`
}

type Payslip struct {
	ID               ID      `json:"id"`
	Employee         ID      `json:"employee"`
	EmployeeName     string  `json:"employee_name,omitempty"`
	Month            int     `json:"month"`
	Year             int     `json:"year"`
	BasicSalary      Decimal `json:"basic_salary"`
	HRA              Decimal `json:"hra"`
	DA               Decimal `json:"da"`
	GrossSalary      Decimal `json:"gross_salary"`
	PFDeduction      Decimal `json:"pf_deduction"`
	ProfessionalTax  Decimal `json:"professional_tax"`
	TotalDeductions  Decimal `json:"total_deductions"`
	NetSalary        Decimal `json:"net_salary"`
	DaysWorked       int     `json:"days_worked"`
	Status           string  `json:"status"`
	DigitalSignature string  `json:"digital_signature,omitempty"`
}

type Payrun struct {
	ID          ID      `json:"id"`
	User        ID      `json:"user"`
	UserName    string  `json:"user_name,omitempty"`
	Month       Month   `json:"month"`
	Year        int     `json:"year"`
	BasicSalary Decimal `json:"basic_salary"`
	PresentDays int     `json:"present_days"`
	AbsentDays  int     `json:"absent_days"`
	GrossPay    Decimal `json:"gross_pay"`
	Deductions  Decimal `json:"deductions"`
	NetPay      Decimal `json:"net_pay"`
}
