package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	// Employee
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetMyBalances(w http.ResponseWriter, r *http.Request)

	// Admin
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	DeclineRequest(w http.ResponseWriter, r *http.Request)
	EditBalance(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// CreateRequest handles POST /leave-requests
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	// Get employee_id from JWT claims
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	var req leave.SubmitRequest
	if !decodeJSON(w, r, &req, "CreateLeaveRequest") {
		return
	}
	req.EmployeeID = employeeID

	created, err := l.leaveService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", created)
}

// GetMyRequests handles GET /leave-requests/me
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	filter := leaveFilterFrom(r)
	filter.EmployeeID = &employeeID

	result, err := l.leaveService.ListLeaveRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyBalances handles GET /leave-balances/me
func (l *LeaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFrom(w, r)
	if !ok {
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

func leaveFilterFrom(r *http.Request) leave.ListFilter {
	filter := leave.ListFilter{Pagination: paginationFrom(r)}
	if status := queryString(r, "status"); status != nil {
		s := leave.RequestStatus(*status)
		filter.Status = &s
	}
	if category := queryString(r, "leave_category"); category != nil {
		c := leave.Category(*category)
		filter.Category = &c
	}
	filter.EmployeeID = queryString(r, "employee_id")
	return filter
}

// ListRequests handles GET /admin/leave-requests
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.ListLeaveRequests(r.Context(), leaveFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRequest handles GET /admin/leave-requests/{id}
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	result, err := l.leaveService.GetLeaveRequest(r.Context(), requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ApproveRequest handles POST /admin/leave-requests/{id}/approve
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	approverID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	requestID, ok := idParam(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	result, err := l.leaveService.Approve(r.Context(), requestID, approverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved successfully", result)
}

// DeclineRequest handles POST /admin/leave-requests/{id}/decline
func (l *LeaveHandlerImpl) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	declinerID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	requestID, ok := idParam(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	var req leave.DeclineRequest
	if !decodeJSON(w, r, &req, "DeclineLeaveRequest") {
		return
	}

	result, err := l.leaveService.Decline(r.Context(), requestID, declinerID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request declined successfully", result)
}

// EditBalance handles PUT /admin/employees/{id}/leave-balances/{category}
func (l *LeaveHandlerImpl) EditBalance(w http.ResponseWriter, r *http.Request) {
	adminID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	employeeID, ok := idParam(w, r, "id", employee.ErrEmployeeNotFound)
	if !ok {
		return
	}

	var req leave.EditBalanceRequest
	if !decodeJSON(w, r, &req, "EditLeaveBalance") {
		return
	}
	req.EmployeeID = employeeID
	req.Category = leave.Category(chi.URLParam(r, "category"))
	req.AdminID = adminID
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.EditBeginningBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance updated successfully", result)
}
