package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"gorm.io/gorm"
)

// memContractRepo is an in-memory contract store that mimics the partial
// unique index on active contracts and the conditional renew update.
type memContractRepo struct {
	repository.ContractRepository

	mu        sync.Mutex
	contracts map[uint]models.Contract
	nextID    uint

	beforeRenew func()
	expireErr   error
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{contracts: make(map[uint]models.Contract), nextID: 1}
}

func cloneContract(c models.Contract) models.Contract {
	if c.Events != nil {
		c.Events = append([]models.ContractEvent(nil), c.Events...)
	}
	return c
}

func (r *memContractRepo) put(c models.Contract) *models.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		c.ID = r.nextID
	}
	if c.ID >= r.nextID {
		r.nextID = c.ID + 1
	}
	r.contracts[c.ID] = cloneContract(c)
	return &c
}

func (r *memContractRepo) get(id uint) models.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneContract(r.contracts[id])
}

func (r *memContractRepo) activeCount(clientID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.contracts {
		if c.ClientID == clientID && c.Status == models.ContractStatusActive {
			n++
		}
	}
	return n
}

func (r *memContractRepo) violatesActiveIndex(c *models.Contract) bool {
	if c.Status != models.ContractStatusActive {
		return false
	}
	for id, existing := range r.contracts {
		if id != c.ID && existing.ClientID == c.ClientID && existing.Status == models.ContractStatusActive {
			return true
		}
	}
	return false
}

func (r *memContractRepo) find(id uint) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = cloneContract(c)
	return &c, nil
}

func (r *memContractRepo) FindByIDInGym(ctx context.Context, gymID, id uint) (*models.Contract, error) {
	c, err := r.find(id)
	if err != nil {
		return nil, err
	}
	if c.GymID != gymID {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *memContractRepo) FindActiveByClient(ctx context.Context, clientID uint) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contracts {
		if c.ClientID == clientID && c.Status == models.ContractStatusActive {
			c = cloneContract(c)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.violatesActiveIndex(contract) {
		return gorm.ErrDuplicatedKey
	}
	contract.ID = r.nextID
	r.nextID++
	r.contracts[contract.ID] = cloneContract(*contract)
	return nil
}

func (r *memContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.violatesActiveIndex(contract) {
		return gorm.ErrDuplicatedKey
	}
	r.contracts[contract.ID] = cloneContract(*contract)
	return nil
}

func (r *memContractRepo) Renew(ctx context.Context, previous *models.Contract, next *models.Contract) error {
	if r.beforeRenew != nil {
		r.beforeRenew()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.contracts[previous.ID]
	if !ok || stored.Status == models.ContractStatusCancelled {
		return repository.ErrContractChanged
	}
	stored.Status = models.ContractStatusExpired
	stored.UpdatedByID = previous.UpdatedByID

	if next.Status == models.ContractStatusActive {
		for id, existing := range r.contracts {
			if id != previous.ID && existing.ClientID == next.ClientID && existing.Status == models.ContractStatusActive {
				return gorm.ErrDuplicatedKey
			}
		}
	}

	r.contracts[previous.ID] = stored
	next.ID = r.nextID
	r.nextID++
	r.contracts[next.ID] = cloneContract(*next)
	return nil
}

func (r *memContractRepo) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Contract
	for _, c := range r.contracts {
		if query.GymID > 0 && c.GymID != query.GymID {
			continue
		}
		if query.ClientID > 0 && c.ClientID != query.ClientID {
			continue
		}
		day := c.StartDate.Format("2006-01-02")
		if from := query.Filters["start_from"]; from != "" && day < from {
			continue
		}
		if to := query.Filters["start_to"]; to != "" && day > to {
			continue
		}
		switch query.Status {
		case "":
		case models.ContractStatusExpiringSoon:
			if !models.IsExpiringSoon(c.Status, c.EndDate, query.Now, query.ExpiringSoonWindow) {
				continue
			}
		default:
			if c.Status != query.Status {
				continue
			}
		}
		out = append(out, cloneContract(c))
	}
	if query.SortBy == "start_date" {
		sort.Slice(out, func(i, j int) bool {
			if query.SortDir == "asc" {
				return out[i].StartDate.Before(out[j].StartDate)
			}
			return out[i].StartDate.After(out[j].StartDate)
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out, int64(len(out)), nil
}

func (r *memContractRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	if r.expireErr != nil {
		return 0, r.expireErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.contracts {
		if c.Status == models.ContractStatusActive && !c.EndDate.After(now) {
			c.Status = models.ContractStatusExpired
			r.contracts[id] = c
			n++
		}
	}
	return n, nil
}

func (r *memContractRepo) CountExpiringSoon(ctx context.Context, now time.Time, window time.Duration) (int64, error) {
	list, err := r.FindExpiringSoon(ctx, now, window, 0)
	return int64(len(list)), err
}

func (r *memContractRepo) FindExpiringSoon(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Contract
	for _, c := range r.contracts {
		if models.IsExpiringSoon(c.Status, c.EndDate, now, window) {
			out = append(out, cloneContract(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memContractRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, c := range r.contracts {
		counts[c.Status]++
	}
	return counts, nil
}

type mockGymRepo struct {
	repository.GymRepository
	gyms   map[uint]*models.Gym
	access map[uint]map[uint]bool
}

func (m *mockGymRepo) FindByID(ctx context.Context, id uint) (*models.Gym, error) {
	gym, ok := m.gyms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return gym, nil
}

func (m *mockGymRepo) HasAccess(ctx context.Context, gymID, userID uint) (bool, error) {
	return m.access[gymID][userID], nil
}

type mockClientRepo struct {
	repository.ClientRepository
	clients map[uint]*models.Client
}

func (m *mockClientRepo) FindActiveClient(ctx context.Context, clientID, gymID uint) (*models.Client, error) {
	c, ok := m.clients[clientID]
	if !ok || c.GymID != gymID || c.Status != models.StatusActive {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

type mockPlanRepo struct {
	repository.PlanRepository
	plans map[uint]*models.MembershipPlan
}

func (m *mockPlanRepo) FindActivePlan(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error) {
	p, err := m.FindByID(ctx, planID, gymID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockPlanRepo) FindByID(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error) {
	p, ok := m.plans[planID]
	if !ok || p.GymID != gymID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type mockAuditRepo struct {
	repository.AuditRepository
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// Fixture ids
const (
	testGymID      uint = 1
	otherGymID     uint = 2
	ownerID        uint = 10
	strangerID     uint = 99
	clientID       uint = 100
	secondClientID uint = 101
	monthlyPlanID  uint = 200
	dailyPlanID    uint = 201
	retiredPlanID  uint = 202
)

type fixture struct {
	contracts *memContractRepo
	audits    *mockAuditRepo
	plans     *mockPlanRepo
	engine    *ContractService
	query     *ContractQueryService
	now       time.Time
	owner     Actor
}

func newFixture(now time.Time) *fixture {
	contracts := newMemContractRepo()
	audits := &mockAuditRepo{}
	gyms := &mockGymRepo{
		gyms: map[uint]*models.Gym{
			testGymID:  {ID: testGymID, OwnerID: ownerID, Organization: models.Organization{Currency: "HNL"}},
			otherGymID: {ID: otherGymID, OwnerID: strangerID, Organization: models.Organization{Currency: "USD"}},
		},
		access: map[uint]map[uint]bool{
			testGymID:  {ownerID: true},
			otherGymID: {strangerID: true},
		},
	}
	clients := &mockClientRepo{clients: map[uint]*models.Client{
		clientID:       {ID: clientID, GymID: testGymID, FullName: "Ana López", Status: models.StatusActive},
		secondClientID: {ID: secondClientID, GymID: testGymID, FullName: "Luis Pérez", Status: models.StatusActive},
	}}
	plans := &mockPlanRepo{plans: map[uint]*models.MembershipPlan{
		monthlyPlanID: {ID: monthlyPlanID, GymID: testGymID, Name: "Mensual", BasePrice: 100, DurationMonths: intPtr(1), PaymentFrequency: models.PaymentFrequencyMonthly, Status: models.StatusActive},
		dailyPlanID:   {ID: dailyPlanID, GymID: testGymID, Name: "Quincenal", BasePrice: 60, DurationDays: intPtr(15), PaymentFrequency: models.PaymentFrequencyOnce, Status: models.StatusActive},
		retiredPlanID: {ID: retiredPlanID, GymID: testGymID, Name: "Anual 2023", BasePrice: 900, DurationMonths: intPtr(12), PaymentFrequency: models.PaymentFrequencyYearly, Status: models.StatusInactive},
	}}

	access := NewGymAccessService(gyms)
	auditSvc := NewAuditService(audits)
	policy := ContractPolicy{MaxFreezeDays: 30}

	f := &fixture{
		contracts: contracts,
		audits:    audits,
		plans:     plans,
		engine:    NewContractService(contracts, clients, plans, access, auditSvc, policy),
		query:     NewContractQueryService(contracts, access, 7*24*time.Hour),
		now:       now,
		owner:     Actor{UserID: ownerID},
	}
	f.engine.now = func() time.Time { return f.now }
	f.query.now = func() time.Time { return f.now }
	return f
}
