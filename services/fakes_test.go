package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore backs every fake repository with plain maps.
type memStore struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]models.Category
	products   map[primitive.ObjectID]models.Product
	items      map[primitive.ObjectID]models.OrderItem
	orders     map[primitive.ObjectID]models.Order
	users      map[primitive.ObjectID]models.User

	// failItemCreateAfter makes the nth item insert (1-based) fail.
	failItemCreateAfter int
	itemCreates         int
	failOrderCreate     bool
	failItemDelete      bool
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[primitive.ObjectID]models.Category{},
		products:   map[primitive.ObjectID]models.Product{},
		items:      map[primitive.ObjectID]models.OrderItem{},
		orders:     map[primitive.ObjectID]models.Order{},
		users:      map[primitive.ObjectID]models.User{},
	}
}

func newID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}

type fakeCategoryRepo struct{ s *memStore }

func (r fakeCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Category{}
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r fakeCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r fakeCategoryRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Category{}
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCategoryRepo) Create(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID(c.ID)
	r.s.categories[c.ID] = *c
	return nil
}

func (r fakeCategoryRepo) Replace(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r fakeCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r fakeCategoryRepo) HasProducts(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Category == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeProductRepo struct{ s *memStore }

func (r fakeProductRepo) Find(ctx context.Context, q repository.ProductQuery) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	term := strings.ToLower(q.Term)
	out := []models.Product{}
	for _, p := range r.s.products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if len(q.CategoryIDs) > 0 {
			match := false
			for _, c := range q.CategoryIDs {
				match = match || p.Category == c
			}
			if !match {
				continue
			}
		}
		if q.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r fakeProductRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Product{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeProductRepo) Create(ctx context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = newID(p.ID)
	r.s.products[p.ID] = *p
	return nil
}

func (r fakeProductRepo) Replace(ctx context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r fakeProductRepo) SetImages(ctx context.Context, id primitive.ObjectID, images []string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Images = images
	r.s.products[id] = p
	return &p, nil
}

func (r fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r fakeProductRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

type fakeItemRepo struct{ s *memStore }

func (r fakeItemRepo) Create(ctx context.Context, it *models.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.itemCreates++
	if r.s.failItemCreateAfter > 0 && r.s.itemCreates >= r.s.failItemCreateAfter {
		return errors.New("insert orderitem: connection reset")
	}
	it.ID = newID(it.ID)
	r.s.items[it.ID] = *it
	return nil
}

func (r fakeItemRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.OrderItem{}
	for _, id := range ids {
		if it, ok := r.s.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r fakeItemRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failItemDelete {
		return errors.New("delete orderitem: connection reset")
	}
	if _, ok := r.s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.items, id)
	return nil
}

type fakeOrderRepo struct{ s *memStore }

func (r fakeOrderRepo) Create(ctx context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOrderCreate {
		return errors.New("insert order: write concern error")
	}
	o.ID = newID(o.ID)
	r.s.orders[o.ID] = *o
	return nil
}

func (r fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r fakeOrderRepo) sorted(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateOrdered.After(out[j].DateOrdered) })
	return out
}

func (r fakeOrderRepo) FindAll(ctx context.Context) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(models.Order) bool { return true }), nil
}

func (r fakeOrderRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(o models.Order) bool { return o.User == userID }), nil
}

func (r fakeOrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	r.s.orders[id] = o
	return &o, nil
}

func (r fakeOrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r fakeOrderRepo) TotalSales(ctx context.Context) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.orders) == 0 {
		return 0, repository.ErrNoResults
	}
	total := 0.0
	for _, o := range r.s.orders {
		total += o.TotalPrice
	}
	return total, nil
}

func (r fakeOrderRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.orders)), nil
}

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		out = append(out, u)
	}
	return out, nil
}

func (r fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeUserRepo) FindRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.UserRef{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, models.UserRef{ID: u.ID, Name: u.Name})
		}
	}
	return out, nil
}

func (r fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = newID(u.ID)
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) Replace(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

// fakeImageStore records uploads and returns predictable URLs.
type fakeImageStore struct {
	names []string
	err   error
}

func (f *fakeImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, body)
	f.names = append(f.names, name)
	return "http://cdn.test/" + name, nil
}

type publishedEvent struct {
	eventType string
	body      []byte
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, eventType string, message []byte) error {
	f.events = append(f.events, publishedEvent{eventType: eventType, body: message})
	return f.err
}

// rollbackRunner imitates a transaction: writes made by a failed fn are
// discarded by restoring a snapshot of the item and order maps.
type rollbackRunner struct{ s *memStore }

func (r rollbackRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.s.mu.Lock()
	items := make(map[primitive.ObjectID]models.OrderItem, len(r.s.items))
	for k, v := range r.s.items {
		items[k] = v
	}
	orders := make(map[primitive.ObjectID]models.Order, len(r.s.orders))
	for k, v := range r.s.orders {
		orders[k] = v
	}
	r.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.s.mu.Lock()
		r.s.items, r.s.orders = items, orders
		r.s.mu.Unlock()
		return err
	}
	return nil
}

func (r rollbackRunner) Transactional() bool { return true }
