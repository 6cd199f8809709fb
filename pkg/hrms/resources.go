package hrms

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/workzen/hrms-client/pkg/apiclient"
)

const (
	usersPath      = "/users/"
	attendancePath = "/attendance/attendance/"
	leavesPath     = "/leaves/requests/"
	balancePath    = "/leaves/balances/my_balance/"
	payslipsPath   = "/payroll/payslips/"
	myPayslipsPath = "/payroll/payslips/my_payslips/"
	payrunsPath    = "/payroll/payruns/"
)

type UsersService struct {
	api *apiclient.Client
}

func (s *UsersService) List(ctx context.Context) ([]User, error) {
	return list[User](ctx, s.api, apiclient.Get(usersPath))
}

func (s *UsersService) Get(ctx context.Context, id ID) (User, error) {
	return do[User](ctx, s.api, apiclient.Get(resourcePath(usersPath, id)))
}

func (s *UsersService) Create(ctx context.Context, in UserInput) (User, error) {
	return do[User](ctx, s.api, apiclient.Post(usersPath, in))
}

func (s *UsersService) Update(ctx context.Context, id ID, in UserInput) (User, error) {
	return do[User](ctx, s.api, apiclient.Put(resourcePath(usersPath, id), in))
}

func (s *UsersService) Delete(ctx context.Context, id ID) error {
	return exec(ctx, s.api, apiclient.Delete(resourcePath(usersPath, id)))
}

type AttendanceService struct {
	api *apiclient.Client
}

// List returns attendance records matching params, e.g. date or status.
func (s *AttendanceService) List(ctx context.Context, params url.Values) ([]Attendance, error) {
	return list[Attendance](ctx, s.api, withQuery(apiclient.Get(attendancePath), params))
}

// Mine returns the records of the logged-in user. A zero month or year lets
// the backend pick the current one.
func (s *AttendanceService) Mine(ctx context.Context, month, year int) ([]Attendance, error) {
	req := apiclient.Get(attendancePath + "my_attendance/")
	req = withInt(req, "month", month)
	req = withInt(req, "year", year)

	return list[Attendance](ctx, s.api, req)
}

// Statistics returns the backend's attendance summary unchanged. An empty
// employeeID selects the logged-in user.
func (s *AttendanceService) Statistics(ctx context.Context, month, year int, employeeID ID) (json.RawMessage, error) {
	req := apiclient.Get(attendancePath + "statistics/")
	req = withInt(req, "month", month)
	req = withInt(req, "year", year)
	req = req.WithQuery("employee_id", employeeID.String())

	return do[json.RawMessage](ctx, s.api, req)
}

func (s *AttendanceService) Mark(ctx context.Context, in AttendanceInput) (Attendance, error) {
	return do[Attendance](ctx, s.api, apiclient.Post(attendancePath, in))
}

func (s *AttendanceService) Update(ctx context.Context, id ID, in AttendanceInput) (Attendance, error) {
	return do[Attendance](ctx, s.api, apiclient.Put(resourcePath(attendancePath, id), in))
}

type LeavesService struct {
	api *apiclient.Client
}

type reviewComments struct {
	Comments string `json:"comments"`
}

// List returns leave requests matching params, e.g. status=pending.
func (s *LeavesService) List(ctx context.Context, params url.Values) ([]Leave, error) {
	return list[Leave](ctx, s.api, withQuery(apiclient.Get(leavesPath), params))
}

func (s *LeavesService) MyBalance(ctx context.Context, year int) (LeaveBalance, error) {
	return do[LeaveBalance](ctx, s.api, withInt(apiclient.Get(balancePath), "year", year))
}

func (s *LeavesService) Create(ctx context.Context, in LeaveInput) (Leave, error) {
	return do[Leave](ctx, s.api, apiclient.Post(leavesPath, in))
}

func (s *LeavesService) Approve(ctx context.Context, id ID, comments string) error {
	return exec(ctx, s.api, apiclient.Post(resourcePath(leavesPath, id, "approve"), reviewComments{Comments: comments}))
}

func (s *LeavesService) Reject(ctx context.Context, id ID, comments string) error {
	return exec(ctx, s.api, apiclient.Post(resourcePath(leavesPath, id, "reject"), reviewComments{Comments: comments}))
}

type PayrollService struct {
	api *apiclient.Client
}

// Payslips lists payslips visible to the user, optionally filtered by month
// and year.
func (s *PayrollService) Payslips(ctx context.Context, params url.Values) ([]Payslip, error) {
	return list[Payslip](ctx, s.api, withQuery(apiclient.Get(payslipsPath), params))
}

func (s *PayrollService) MyPayslips(ctx context.Context) ([]Payslip, error) {
	return list[Payslip](ctx, s.api, apiclient.Get(myPayslipsPath))
}

func (s *PayrollService) Payruns(ctx context.Context) ([]Payrun, error) {
	return list[Payrun](ctx, s.api, apiclient.Get(payrunsPath))
}

// AnalyticsService returns the analytics reports as raw JSON; their shape
// depends on the models deployed on the backend.
type AnalyticsService struct {
	api *apiclient.Client
}

func (s *AnalyticsService) Sentiment(ctx context.Context) (json.RawMessage, error) {
	return do[json.RawMessage](ctx, s.api, apiclient.Get("/analytics/sentiment/"))
}

func (s *AnalyticsService) Attrition(ctx context.Context) (json.RawMessage, error) {
	return do[json.RawMessage](ctx, s.api, apiclient.Get("/analytics/attrition/"))
}

func (s *AnalyticsService) Awards(ctx context.Context) (json.RawMessage, error) {
	return do[json.RawMessage](ctx, s.api, apiclient.Get("/analytics/awards/"))
}
