// Package memory provides in-process implementations of the repository
// interfaces. Services use it in tests; it mirrors the Postgres adapters'
// filtering, ordering and error mapping.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
)

// Store holds every table behind one lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	departments map[string]models.Department
	folders     map[string]docsystem.Folder
	documents   map[string]docsystem.Document
	tags        map[string]docsystem.Tag
	invoices    map[string]docsystem.InvoiceRecord

	now  func() time.Time
	last time.Time
}

func NewStore() *Store {
	return &Store{
		users:       map[string]models.User{},
		departments: map[string]models.Department{},
		folders:     map[string]docsystem.Folder{},
		documents:   map[string]docsystem.Document{},
		tags:        map[string]docsystem.Tag{},
		invoices:    map[string]docsystem.InvoiceRecord{},
		now:         time.Now,
	}
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Departments() *DepartmentRepository { return &DepartmentRepository{s} }
func (s *Store) Folders() *FolderRepository         { return &FolderRepository{s} }
func (s *Store) Documents() *DocumentRepository     { return &DocumentRepository{s} }
func (s *Store) Tags() *TagRepository               { return &TagRepository{s} }
func (s *Store) Invoices() *InvoiceRepository       { return &InvoiceRepository{s} }

// TxManager runs fn directly; the store has no rollback.
func (s *Store) TxManager() repositories.TransactionManager { return txManager{} }

type txManager struct{}

func (txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

// PutFolder stores f as-is, bypassing existence checks. Tests use it to
// build corrupted hierarchies.
func (s *Store) PutFolder(f docsystem.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[f.ID] = cloneFolder(f)
}

// stamp returns a strictly increasing timestamp so creation order is stable.
// Callers hold the write lock.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

func cloneFolder(f docsystem.Folder) docsystem.Folder {
	f.SharedWith = cloneIDs(f.SharedWith)
	f.DepartmentAccess = cloneIDs(f.DepartmentAccess)
	if f.ParentID != nil {
		p := *f.ParentID
		f.ParentID = &p
	}
	return f
}

func cloneDocument(d docsystem.Document, withContent bool) docsystem.Document {
	d.Tags = cloneIDs(d.Tags)
	d.SharedWith = cloneIDs(d.SharedWith)
	d.Permissions = docsystem.Permissions{
		Read:   cloneIDs(d.Permissions.Read),
		Write:  cloneIDs(d.Permissions.Write),
		Delete: cloneIDs(d.Permissions.Delete),
	}
	if d.FolderID != nil {
		f := *d.FolderID
		d.FolderID = &f
	}
	if !withContent {
		d.Content = ""
	}
	return d
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func countExisting[T any](m map[string]T, ids []string) int {
	n := 0
	for _, id := range ids {
		if _, ok := m[id]; ok {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Users and departments
// ---------------------------------------------------------------------------

type UserRepository struct{ s *Store }

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &domain.ConflictError{Message: "user already exists", ResourceType: "user", ResourceID: u.ID}
		}
	}
	if _, ok := r.s.departments[user.DepartmentID]; !ok {
		return domain.Validation("department %s does not exist", user.DepartmentID)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.s.stamp()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	stored.Department = nil
	r.s.users[user.ID] = stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user", email)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return domain.NotFound("user", user.ID)
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && strings.EqualFold(u.Email, user.Email) {
			return &domain.ConflictError{Message: "user already exists", ResourceType: "user", ResourceID: u.ID}
		}
	}
	if _, ok := r.s.departments[user.DepartmentID]; !ok {
		return domain.Validation("department %s does not exist", user.DepartmentID)
	}
	if user.PasswordHash == "" {
		user.PasswordHash = existing.PasswordHash
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.stamp()
	stored := *user
	stored.Department = nil
	r.s.users[user.ID] = stored
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	for _, f := range r.s.folders {
		if f.OwnerID == id {
			return &domain.ConflictError{Message: "user still owns folders", ResourceType: "user", ResourceID: id}
		}
	}
	for _, d := range r.s.documents {
		if d.OwnerID == id {
			return &domain.ConflictError{Message: "user still owns documents", ResourceType: "user", ResourceID: id}
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b models.User) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return users, nil
}

func (r *UserRepository) Search(ctx context.Context, terms []string, limit int) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := []models.User{}
	if len(terms) == 0 {
		return users, nil
	}
	for _, u := range r.s.users {
		for _, t := range terms {
			if containsFold(u.Name, t) || containsFold(u.Email, t) || containsFold(string(u.Role), t) {
				users = append(users, u)
				break
			}
		}
	}
	slices.SortFunc(users, func(a, b models.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *UserRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return countExisting(r.s.users, ids), nil
}

func (r *UserRepository) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, u := range r.s.users {
		if u.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

type DepartmentRepository struct{ s *Store }

var _ repositories.DepartmentRepository = (*DepartmentRepository)(nil)

func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.departments {
		if d.Name == dept.Name {
			return &domain.ConflictError{Message: "department already exists", ResourceType: "department", ResourceID: d.ID}
		}
	}
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	dept.CreatedAt = r.s.stamp()
	dept.UpdatedAt = dept.CreatedAt
	stored := *dept
	stored.EmployeeCount = nil
	r.s.departments[dept.ID] = stored
	return nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*models.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, domain.NotFound("department", id)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*models.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.departments {
		if d.Name == name {
			return &d, nil
		}
	}
	return nil, domain.NotFound("department", name)
}

func (r *DepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.departments[dept.ID]
	if !ok {
		return domain.NotFound("department", dept.ID)
	}
	existing.DisplayName = dept.DisplayName
	existing.Description = dept.Description
	existing.IsActive = dept.IsActive
	existing.UpdatedAt = r.s.stamp()
	r.s.departments[dept.ID] = existing
	*dept = existing
	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[id]; !ok {
		return domain.NotFound("department", id)
	}
	for _, u := range r.s.users {
		if u.DepartmentID == id {
			return &domain.ConflictError{Message: "department has users", ResourceType: "department", ResourceID: id}
		}
	}
	delete(r.s.departments, id)
	return nil
}

func (r *DepartmentRepository) ListActive(ctx context.Context) ([]models.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[string]int{}
	for _, u := range r.s.users {
		counts[u.DepartmentID]++
	}
	depts := []models.Department{}
	for _, d := range r.s.departments {
		if !d.IsActive {
			continue
		}
		n := counts[d.ID]
		d.EmployeeCount = &n
		depts = append(depts, d)
	}
	slices.SortFunc(depts, func(a, b models.Department) int { return strings.Compare(a.DisplayName, b.DisplayName) })
	return depts, nil
}

func (r *DepartmentRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return countExisting(r.s.departments, ids), nil
}
