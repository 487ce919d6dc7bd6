package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/pkg/jwt"
	"github.com/KamineHiro/shift-maker/pkg/redis"
)

var errMockStore = errors.New("mock: store unavailable")

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*model.Group
	// forcedDup 前 N 次 Create 返回唯一键冲突
	forcedDup int
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group)}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedDup > 0 {
		m.forcedDup--
		return gorm.ErrDuplicatedKey
	}
	for _, g := range m.groups {
		if g.AccessKey == group.AccessKey || g.AdminKey == group.AdminKey {
			return gorm.ErrDuplicatedKey
		}
	}
	if group.GroupID == "" {
		group.GroupID = uuid.NewString()
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	cp := *group
	m.groups[group.GroupID] = &cp
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) GetByAccessKey(_ context.Context, key string) (*model.Group, error) {
	return m.find(func(g *model.Group) bool { return g.AccessKey == key })
}

func (m *mockGroupRepo) GetByAdminKey(_ context.Context, key string) (*model.Group, error) {
	return m.find(func(g *model.Group) bool { return g.AdminKey == key })
}

func (m *mockGroupRepo) find(match func(*model.Group) bool) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if match(g) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) UpdateDateRange(_ context.Context, id string, startDate model.Date, days int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d, n := startDate, days
	g.ShiftStartDate = &d
	g.ShiftDays = &n
	return nil
}

// ── Mock StaffRepository ──

type mockStaffRepo struct {
	mu    sync.Mutex
	staff map[string]*model.Staff
	order []string
	// shifts 用于模拟 ON DELETE CASCADE
	shifts *mockShiftRepo
	// getErr 非空时 GetByID 返回该错误
	getErr error
}

func newMockStaffRepo(shifts *mockShiftRepo) *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*model.Staff), shifts: shifts}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(staff)
	return nil
}

func (m *mockStaffRepo) insert(staff *model.Staff) {
	if staff.StaffID == "" {
		staff.StaffID = uuid.NewString()
	}
	if staff.Role == "" {
		staff.Role = model.StaffRoleStaff
	}
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt
	cp := *staff
	m.staff[staff.StaffID] = &cp
	m.order = append(m.order, staff.StaffID)
}

func (m *mockStaffRepo) BatchCreate(_ context.Context, staff []model.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range staff {
		m.insert(&staff[i])
	}
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, groupID, staffID string) (*model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.staff[staffID]; ok && s.GroupID == groupID {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) ListByGroup(_ context.Context, groupID string) ([]model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Staff
	for _, id := range m.order {
		if s, ok := m.staff[id]; ok && s.GroupID == groupID {
			list = append(list, *s)
		}
	}
	return list, nil
}

func (m *mockStaffRepo) Rename(_ context.Context, groupID, staffID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok || s.GroupID != groupID {
		return gorm.ErrRecordNotFound
	}
	s.Name = name
	return nil
}

func (m *mockStaffRepo) SetConfirmed(_ context.Context, groupID, staffID string, confirmed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok || s.GroupID != groupID {
		return gorm.ErrRecordNotFound
	}
	s.IsShiftConfirmed = confirmed
	if confirmed {
		now := time.Now()
		s.ConfirmedAt = &now
	} else {
		s.ConfirmedAt = nil
	}
	return nil
}

func (m *mockStaffRepo) Delete(_ context.Context, groupID, staffID string) error {
	m.mu.Lock()
	s, ok := m.staff[staffID]
	if !ok || s.GroupID != groupID {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	delete(m.staff, staffID)
	m.mu.Unlock()

	if m.shifts != nil {
		m.shifts.deleteStaff(staffID)
	}
	return nil
}

// ── Mock ShiftRepository ──

type shiftKey struct {
	staffID string
	date    model.Date
}

type mockShiftRepo struct {
	mu     sync.Mutex
	shifts map[shiftKey]*model.Shift

	// failDates 对这些日期的 Upsert 返回错误
	failDates map[model.Date]bool
	// hiddenLists 第 N 次 ListByStaff 调用返回空结果，模拟写入尚不可见
	hiddenLists map[int]bool
	listCalls   int
	upserts     int
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{
		shifts:      make(map[shiftKey]*model.Shift),
		failDates:   make(map[model.Date]bool),
		hiddenLists: make(map[int]bool),
	}
}

func (m *mockShiftRepo) Get(_ context.Context, staffID string, date model.Date) (*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shifts[shiftKey{staffID, date}]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListByStaff(_ context.Context, staffID string) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.hiddenLists[m.listCalls] {
		return nil, nil
	}
	var list []model.Shift
	for k, s := range m.shifts {
		if k.staffID == staffID {
			list = append(list, *s)
		}
	}
	sortShifts(list)
	return list, nil
}

func (m *mockShiftRepo) ListByStaffIDs(_ context.Context, staffIDs []string, from, to model.Date) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(staffIDs))
	for _, id := range staffIDs {
		ids[id] = true
	}
	var list []model.Shift
	for k, s := range m.shifts {
		if ids[k.staffID] && k.date >= from && k.date <= to {
			list = append(list, *s)
		}
	}
	sortShifts(list)
	return list, nil
}

func (m *mockShiftRepo) Upsert(_ context.Context, shift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDates[shift.Date] {
		return errMockStore
	}
	m.upserts++
	key := shiftKey{shift.StaffID, shift.Date}
	now := time.Now()
	if existing, ok := m.shifts[key]; ok {
		shift.ShiftID = existing.ShiftID
		shift.CreatedAt = existing.CreatedAt
	} else {
		shift.ShiftID = uuid.NewString()
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now
	cp := *shift
	m.shifts[key] = &cp
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, staffID string, date model.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shifts, shiftKey{staffID, date})
	return nil
}

func (m *mockShiftRepo) DeleteBefore(_ context.Context, cutoff model.Date) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.shifts {
		if k.date < cutoff {
			delete(m.shifts, k)
			n++
		}
	}
	return n, nil
}

func (m *mockShiftRepo) DeleteByStaffIDsAndDates(_ context.Context, staffIDs []string, from, to model.Date) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(staffIDs))
	for _, id := range staffIDs {
		ids[id] = true
	}
	var n int64
	for k := range m.shifts {
		if ids[k.staffID] && k.date >= from && k.date <= to {
			delete(m.shifts, k)
			n++
		}
	}
	return n, nil
}

func (m *mockShiftRepo) deleteStaff(staffID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.shifts {
		if k.staffID == staffID {
			delete(m.shifts, k)
		}
	}
}

func (m *mockShiftRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shifts)
}

func sortShifts(list []model.Shift) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].StaffID < list[j].StaffID
	})
}

// ── Mock ShiftPeriodRepository ──

type mockPeriodRepo struct {
	mu      sync.Mutex
	periods map[string]*model.ShiftPeriod
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.ShiftPeriod)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.ShiftPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if p.GroupID == period.GroupID && p.StartDate == period.StartDate {
			return gorm.ErrDuplicatedKey
		}
	}
	period.PeriodID = uuid.NewString()
	period.CreatedAt = time.Now()
	cp := *period
	m.periods[period.PeriodID] = &cp
	return nil
}

func (m *mockPeriodRepo) ListByGroup(_ context.Context, groupID string) ([]model.ShiftPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.ShiftPeriod
	for _, p := range m.periods {
		if p.GroupID == groupID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate > list[j].StartDate })
	return list, nil
}

func (m *mockPeriodRepo) GetByStartDate(_ context.Context, groupID string, startDate model.Date) (*model.ShiftPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if p.GroupID == groupID && p.StartDate == startDate {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) Delete(_ context.Context, periodID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.periods, periodID)
	return nil
}

// ── Mock Cache / TokenRevoker ──

type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	m.sets++
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

type mockRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (m *mockRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if m.revoked == nil {
		m.revoked = make(map[string]time.Duration)
	}
	m.revoked[jti] = ttl
	return nil
}

// ── 测试环境 ──

type testEnv struct {
	repo    *repository.Repository
	groups  *mockGroupRepo
	staff   *mockStaffRepo
	shifts  *mockShiftRepo
	periods *mockPeriodRepo
	cache   *mockCache
	cfg     *config.Config
	logger  *zap.Logger
}

func newTestEnv() *testEnv {
	shifts := newMockShiftRepo()
	env := &testEnv{
		groups:  newMockGroupRepo(),
		staff:   newMockStaffRepo(shifts),
		shifts:  shifts,
		periods: newMockPeriodRepo(),
		cache:   newMockCache(),
		logger:  zap.NewNop(),
		cfg: &config.Config{
			Auth: config.AuthConfig{JWTSecret: "test-secret-0123456789", SessionTTL: time.Hour},
			Shift: config.ShiftConfig{
				DefaultDays:   14,
				MaxDays:       62,
				RetentionDays: 42,
				BulkStart:     "09:00",
				BulkEnd:       "22:00",
				VerifyRetries: 3,
				VerifyStep:    time.Millisecond,
			},
		},
	}
	env.repo = &repository.Repository{
		Group:       env.groups,
		Staff:       env.staff,
		Shift:       env.shifts,
		ShiftPeriod: env.periods,
	}
	return env
}

func (e *testEnv) jwtManager() *jwt.Manager {
	return jwt.NewManager(&e.cfg.Auth)
}

// seedGroup 创建小组与若干员工，返回 groupID 与员工 ID
func (e *testEnv) seedGroup(name string, staffNames ...string) (string, []string) {
	g := &model.Group{Name: name, AccessKey: uuid.NewString()[:8], AdminKey: uuid.NewString()[:8]}
	_ = e.groups.Create(context.Background(), g)

	ids := make([]string, 0, len(staffNames))
	for _, n := range staffNames {
		s := &model.Staff{GroupID: g.GroupID, Name: n}
		_ = e.staff.Create(context.Background(), s)
		ids = append(ids, s.StaffID)
	}
	return g.GroupID, ids
}

func (e *testEnv) shiftService(now time.Time) *shiftService {
	return &shiftService{
		cfg:    &e.cfg.Shift,
		repo:   e.repo,
		cache:  e.cache,
		logger: e.logger,
		now:    func() time.Time { return now },
	}
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
