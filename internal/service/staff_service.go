package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

// StaffService 员工业务接口
type StaffService interface {
	List(ctx context.Context, groupID string) ([]dto.StaffResponse, error)
	Create(ctx context.Context, groupID string, req *dto.CreateStaffRequest) (*dto.StaffResponse, error)
	Get(ctx context.Context, groupID, staffID string) (*dto.StaffResponse, error)
	Rename(ctx context.Context, groupID, staffID string, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error)
	// Delete 删除员工，其排班随之级联删除
	Delete(ctx context.Context, groupID, staffID string) error
	ParseImportFile(reader io.Reader, filename string) ([]ImportStaffRow, error)
	Import(ctx context.Context, groupID string, rows []ImportStaffRow) (*dto.ImportStaffResponse, error)
}

// ImportStaffRow 表格导入解析后的单行数据
type ImportStaffRow struct {
	Row  int
	Name string
	Role string
}

type staffService struct {
	repo         *repository.Repository
	confirmation ConfirmationService
	logger       *zap.Logger
}

// NewStaffService 创建 StaffService 实例
func NewStaffService(repo *repository.Repository, confirmation ConfirmationService, logger *zap.Logger) StaffService {
	return &staffService{repo: repo, confirmation: confirmation, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *staffService) List(ctx context.Context, groupID string) ([]dto.StaffResponse, error) {
	list, err := s.repo.Staff.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	result := make([]dto.StaffResponse, 0, len(list))
	for i := range list {
		result = append(result, toStaffResponse(&list[i]))
	}
	return result, nil
}

func (s *staffService) Get(ctx context.Context, groupID, staffID string) (*dto.StaffResponse, error) {
	staff, err := lookupStaff(ctx, s.repo, s.logger, groupID, staffID)
	if err != nil {
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *staffService) Create(ctx context.Context, groupID string, req *dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	role := req.Role
	if role == "" {
		role = model.StaffRoleStaff
	}
	if role != model.StaffRoleStaff && role != model.StaffRoleManager {
		return nil, apperrors.Validation("角色无效")
	}

	staff := &model.Staff{GroupID: groupID, Name: name, Role: role}
	if err := s.repo.Staff.Create(ctx, staff); err != nil {
		s.logger.Error("创建员工失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	s.logger.Info("员工已添加", zap.String("group_id", groupID), zap.String("staff_id", staff.StaffID))
	resp := toStaffResponse(staff)
	return &resp, nil
}

// ────────────────────── Rename ──────────────────────

func (s *staffService) Rename(ctx context.Context, groupID, staffID string, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if err := s.repo.Staff.Rename(ctx, groupID, staffID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("员工改名失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	return s.Get(ctx, groupID, staffID)
}

// ────────────────────── Delete ──────────────────────

func (s *staffService) Delete(ctx context.Context, groupID, staffID string) error {
	if err := validStaffID(staffID); err != nil {
		return err
	}
	if err := s.repo.Staff.Delete(ctx, groupID, staffID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffNotFound
		}
		s.logger.Error("删除员工失败", zap.String("staff_id", staffID), zap.Error(err))
		return apperrors.Store(err)
	}
	if s.confirmation != nil {
		s.confirmation.Forget(groupID, staffID)
	}
	s.logger.Info("员工已删除", zap.String("group_id", groupID), zap.String("staff_id", staffID))
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 500

var (
	ErrImportNoData      = apperrors.Validation("表格无数据行（第一行为表头）")
	ErrImportTooManyRows = apperrors.Validation(fmt.Sprintf("数据行数超过上限 %d 行", maxImportRows))
	ErrImportBadHeader   = apperrors.Validation("表头缺少姓名列（名前/姓名/name）")
	ErrImportBadFile     = apperrors.Validation("无法解析表格文件")
)

// ParseImportFile 解析 .xlsx / .xls 员工名单，首行为表头
func (s *staffService) ParseImportFile(reader io.Reader, filename string) ([]ImportStaffRow, error) {
	sheet, err := readSpreadsheet(reader, filename)
	if err != nil {
		s.logger.Warn("解析导入文件失败", zap.String("filename", filename), zap.Error(err))
		return nil, ErrImportBadFile
	}
	if len(sheet) < 2 {
		return nil, ErrImportNoData
	}

	nameIdx, roleIdx := staffHeaderIndex(sheet[0])
	if nameIdx < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportStaffRow
	for i := 1; i < len(sheet); i++ {
		item := ImportStaffRow{
			Row:  i + 1,
			Name: cellValue(sheet[i], nameIdx),
			Role: strings.ToLower(cellValue(sheet[i], roleIdx)),
		}
		if item.Name == "" && item.Role == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// readSpreadsheet 读取首个工作表的全部单元格
func readSpreadsheet(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if wb.NumSheets() == 0 {
			return nil, errors.New("工作簿中没有工作表")
		}
		return wb.ReadAllCells(maxImportRows + 1), nil
	default:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		sheetName := f.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.New("工作簿中没有工作表")
		}
		return f.GetRows(sheetName)
	}
}

// staffHeaderIndex 返回姓名列与角色列的索引，缺失为 -1
func staffHeaderIndex(header []string) (nameIdx, roleIdx int) {
	nameIdx, roleIdx = -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "名前", "姓名", "name":
			if nameIdx < 0 {
				nameIdx = i
			}
		case "役割", "角色", "role":
			if roleIdx < 0 {
				roleIdx = i
			}
		}
	}
	return
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ────────────────────── Import ──────────────────────

// Import 批量添加员工，与现有员工或文件内重名的行跳过
func (s *staffService) Import(ctx context.Context, groupID string, rows []ImportStaffRow) (*dto.ImportStaffResponse, error) {
	resp := &dto.ImportStaffResponse{Total: len(rows)}

	existing, err := s.repo.Staff.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	names := make(map[string]struct{}, len(existing)+len(rows))
	for _, st := range existing {
		names[st.Name] = struct{}{}
	}

	var batch []model.Staff
	for _, row := range rows {
		fail := func(reason string) {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportError{Row: row.Row, Reason: reason})
		}

		if row.Name == "" {
			fail("姓名为空")
			continue
		}
		if len([]rune(row.Name)) > 100 {
			fail("姓名过长")
			continue
		}
		role := row.Role
		if role == "" {
			role = model.StaffRoleStaff
		}
		if role != model.StaffRoleStaff && role != model.StaffRoleManager {
			fail("角色无效: " + row.Role)
			continue
		}
		if _, dup := names[row.Name]; dup {
			fail("员工已存在: " + row.Name)
			continue
		}
		names[row.Name] = struct{}{}
		batch = append(batch, model.Staff{GroupID: groupID, Name: row.Name, Role: role})
	}

	if err := s.repo.Staff.BatchCreate(ctx, batch); err != nil {
		s.logger.Error("批量添加员工失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	resp.Success = len(batch)

	s.logger.Info("员工导入完成",
		zap.String("group_id", groupID),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}
