package handler

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/service"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock GroupService ──

type mockGroupService struct {
	createResult  *dto.CreateGroupResponse
	createErr     error
	sessionResult *dto.SessionResponse
	sessionErr    error
	valid         bool
	verifyErr     error
	leaveErr      error

	gotKey   string
	gotJTI   string
	gotGroup string
}

func (m *mockGroupService) Create(_ context.Context, _ *dto.CreateGroupRequest) (*dto.CreateGroupResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockGroupService) ResolveAccessKey(_ context.Context, key string) (*dto.SessionResponse, error) {
	m.gotKey = key
	return m.sessionResult, m.sessionErr
}
func (m *mockGroupService) ResolveAdminKey(_ context.Context, key string) (*dto.SessionResponse, error) {
	m.gotKey = key
	return m.sessionResult, m.sessionErr
}
func (m *mockGroupService) VerifyAdminPassword(_ context.Context, groupID, _ string) (bool, error) {
	m.gotGroup = groupID
	return m.valid, m.verifyErr
}
func (m *mockGroupService) Current(_ context.Context, groupID, _ string, _ time.Time) (*dto.SessionResponse, error) {
	m.gotGroup = groupID
	return m.sessionResult, m.sessionErr
}
func (m *mockGroupService) Leave(_ context.Context, jti string, _ time.Time) error {
	m.gotJTI = jti
	return m.leaveErr
}

// ── Mock StaffService ──

type mockStaffService struct {
	list      []dto.StaffResponse
	staff     *dto.StaffResponse
	err       error
	rows      []service.ImportStaffRow
	parseErr  error
	importRes *dto.ImportStaffResponse

	gotGroup string
	called   bool
}

func (m *mockStaffService) List(_ context.Context, groupID string) ([]dto.StaffResponse, error) {
	m.gotGroup, m.called = groupID, true
	return m.list, m.err
}
func (m *mockStaffService) Create(_ context.Context, groupID string, _ *dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	m.gotGroup, m.called = groupID, true
	return m.staff, m.err
}
func (m *mockStaffService) Get(_ context.Context, _, _ string) (*dto.StaffResponse, error) {
	m.called = true
	return m.staff, m.err
}
func (m *mockStaffService) Rename(_ context.Context, _, _ string, _ *dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	m.called = true
	return m.staff, m.err
}
func (m *mockStaffService) Delete(_ context.Context, _, _ string) error {
	m.called = true
	return m.err
}
func (m *mockStaffService) ParseImportFile(r io.Reader, _ string) ([]service.ImportStaffRow, error) {
	_, _ = io.ReadAll(r)
	return m.rows, m.parseErr
}
func (m *mockStaffService) Import(_ context.Context, groupID string, _ []service.ImportStaffRow) (*dto.ImportStaffResponse, error) {
	m.gotGroup, m.called = groupID, true
	return m.importRes, m.err
}

// ── Mock ShiftService ──

type mockShiftService struct {
	info    *dto.ShiftInfo
	shifts  map[string]dto.ShiftInfo
	window  *dto.DateRangeResponse
	table   *dto.ShiftTableResponse
	cleanup *dto.CleanupResponse
	err     error

	gotDate string
	called  bool
}

func (m *mockShiftService) GetDates(_ context.Context, _ string) ([]string, error) {
	if m.window == nil {
		return nil, m.err
	}
	return m.window.Dates, m.err
}
func (m *mockShiftService) GetShift(_ context.Context, _, _, date string) (*dto.ShiftInfo, error) {
	m.gotDate, m.called = date, true
	return m.info, m.err
}
func (m *mockShiftService) GetStaffShifts(_ context.Context, _, _ string) (map[string]dto.ShiftInfo, error) {
	m.called = true
	return m.shifts, m.err
}
func (m *mockShiftService) UpdateShift(_ context.Context, _, _, date string, _ *dto.UpdateShiftRequest) (*dto.ShiftInfo, error) {
	m.gotDate, m.called = date, true
	return m.info, m.err
}
func (m *mockShiftService) DeleteShift(_ context.Context, _, _, date string) error {
	m.gotDate, m.called = date, true
	return m.err
}
func (m *mockShiftService) GetDateRange(_ context.Context, _ string) (*dto.DateRangeResponse, error) {
	return m.window, m.err
}
func (m *mockShiftService) SaveDateRange(_ context.Context, _ string, _ *dto.SaveDateRangeRequest) (*dto.DateRangeResponse, error) {
	m.called = true
	return m.window, m.err
}
func (m *mockShiftService) CleanupOldShifts(_ context.Context) (*dto.CleanupResponse, error) {
	m.called = true
	return m.cleanup, m.err
}
func (m *mockShiftService) GetShiftTable(_ context.Context, _ string) (*dto.ShiftTableResponse, error) {
	return m.table, m.err
}
func (m *mockShiftService) GetShiftTableFor(_ context.Context, _ string, _ []string) (*dto.ShiftTableResponse, error) {
	return m.table, m.err
}

// ── Mock BulkService ──

type mockBulkService struct {
	result *dto.BulkSetResponse
	err    error
}

func (m *mockBulkService) BulkSet(_ context.Context, _, _ string, _ *dto.BulkSetRequest) (*dto.BulkSetResponse, error) {
	return m.result, m.err
}

// ── Mock ConfirmationService ──

type mockConfirmationService struct {
	confirmed map[string]bool
	err       error
}

func (m *mockConfirmationService) set(staffID string, v bool) (*dto.ConfirmationResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.confirmed[staffID] = v
	return &dto.ConfirmationResponse{StaffID: staffID, IsConfirmed: v}, nil
}
func (m *mockConfirmationService) Confirm(_ context.Context, _, staffID string) (*dto.ConfirmationResponse, error) {
	return m.set(staffID, true)
}
func (m *mockConfirmationService) Unconfirm(_ context.Context, _, staffID string) (*dto.ConfirmationResponse, error) {
	return m.set(staffID, false)
}
func (m *mockConfirmationService) Get(_ context.Context, _, staffID string) (*dto.ConfirmationResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ConfirmationResponse{StaffID: staffID, IsConfirmed: m.confirmed[staffID]}, nil
}
func (m *mockConfirmationService) Forget(_, staffID string) {
	delete(m.confirmed, staffID)
}

// ── Mock PeriodService ──

type mockPeriodService struct {
	period   *dto.ShiftPeriodResponse
	list     []dto.ShiftPeriodResponse
	deleted  *dto.DeletePeriodResponse
	snapshot []byte
	err      error
	called   bool
}

func (m *mockPeriodService) ArchiveCurrentPeriod(_ context.Context, _ string) (*dto.ShiftPeriodResponse, error) {
	m.called = true
	return m.period, m.err
}
func (m *mockPeriodService) ListPastPeriods(_ context.Context, _ string) ([]dto.ShiftPeriodResponse, error) {
	return m.list, m.err
}
func (m *mockPeriodService) DeletePastPeriod(_ context.Context, _, _ string) (*dto.DeletePeriodResponse, error) {
	m.called = true
	return m.deleted, m.err
}
func (m *mockPeriodService) OpenSnapshot(_ context.Context, _, startDate string) (io.ReadCloser, string, error) {
	m.called = true
	if m.err != nil {
		return nil, "", m.err
	}
	return io.NopCloser(bytes.NewReader(m.snapshot)), "shifts_" + startDate + ".xlsx", nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportShiftTable(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportTable(_ context.Context, _ string, _ []string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportStaffCalendar(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
