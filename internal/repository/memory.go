package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process Store. Transactions work on a copy of the
// data that replaces the live copy on commit; they are serialized with
// respect to every other operation on the store.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type ratingKey struct{ productID, userID int64 }

type interactionKey struct {
	userID, productID int64
	kind              string
}

type memInteraction struct {
	models.ProductInteraction
	seq int64
}

type memData struct {
	nextID int64
	seq    int64

	users         map[int64]models.User
	profiles      map[int64]models.UserProfile
	companies     map[int64]models.Company
	shops         map[int64]models.Shop
	categories    map[int64]models.Category
	subCategories map[int64]models.SubCategory
	products      map[int64]models.Product
	containers    map[models.ContainerKind]map[int64]models.Container
	items         map[models.ContainerKind]map[int64]models.LineItem
	ratings       map[ratingKey]models.Rating
	interactions  map[interactionKey]memInteraction
}

func newMemData() *memData {
	d := &memData{
		users:         map[int64]models.User{},
		profiles:      map[int64]models.UserProfile{},
		companies:     map[int64]models.Company{},
		shops:         map[int64]models.Shop{},
		categories:    map[int64]models.Category{},
		subCategories: map[int64]models.SubCategory{},
		products:      map[int64]models.Product{},
		containers:    map[models.ContainerKind]map[int64]models.Container{},
		items:         map[models.ContainerKind]map[int64]models.LineItem{},
		ratings:       map[ratingKey]models.Rating{},
		interactions:  map[interactionKey]memInteraction{},
	}
	for kind := range containerTables {
		d.containers[kind] = map[int64]models.Container{}
		d.items[kind] = map[int64]models.LineItem{}
	}
	return d
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Stored values never share mutable pointers
// with callers, so copying the maps is enough.
func (d *memData) clone() *memData {
	c := &memData{
		nextID:        d.nextID,
		seq:           d.seq,
		users:         copyMap(d.users),
		profiles:      copyMap(d.profiles),
		companies:     copyMap(d.companies),
		shops:         copyMap(d.shops),
		categories:    copyMap(d.categories),
		subCategories: copyMap(d.subCategories),
		products:      copyMap(d.products),
		containers:    map[models.ContainerKind]map[int64]models.Container{},
		items:         map[models.ContainerKind]map[int64]models.LineItem{},
		ratings:       copyMap(d.ratings),
		interactions:  copyMap(d.interactions),
	}
	for kind := range d.containers {
		c.containers[kind] = copyMap(d.containers[kind])
		c.items[kind] = copyMap(d.items[kind])
	}
	return c
}

func (d *memData) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *memData) tick() int64 {
	d.seq++
	return d.seq
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData()}
}

func (s *MemoryStore) Users() UserRepository { return &memUsers{s} }
func (s *MemoryStore) Companies() CompanyRepository { return &memCompanies{s} }
func (s *MemoryStore) Shops() ShopRepository { return &memShops{s} }
func (s *MemoryStore) Products() ProductRepository { return &memProducts{s} }
func (s *MemoryStore) Categories() CategoryRepository { return &memCategories{s} }
func (s *MemoryStore) Containers() ContainerRepository { return &memContainers{s} }
func (s *MemoryStore) Ratings() RatingRepository { return &memRatings{s} }
func (s *MemoryStore) Interactions() InteractionRepository { return &memInteractions{s} }

// InTx implements Store
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{mu: &sync.Mutex{}, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *MemoryStore) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// SeedCategory inserts a category; categories are managed outside the API.
func (s *MemoryStore) SeedCategory(name, description string) models.Category {
	defer s.lock()()
	c := models.Category{ID: s.data.id(), Name: name, Description: description}
	s.data.categories[c.ID] = c
	return c
}

// SeedSubCategory inserts a sub-category under categoryID.
func (s *MemoryStore) SeedSubCategory(categoryID int64, name, description string) models.SubCategory {
	defer s.lock()()
	sc := models.SubCategory{ID: s.data.id(), CategoryID: categoryID, Name: name, Description: description}
	s.data.subCategories[sc.ID] = sc
	return sc
}

func paginate[T any](all []T, page models.Page) []T {
	off := page.Offset()
	if off < 0 || off >= len(all) {
		return []T{}
	}
	end := len(all)
	if page.Size > 0 && page.Size < end-off {
		end = off + page.Size
	}
	return all[off:end]
}

func copyProduct(p models.Product) models.Product {
	if p.Quantity != nil {
		q := *p.Quantity
		p.Quantity = &q
	}
	if p.AdminStatus != nil {
		a := *p.AdminStatus
		p.AdminStatus = &a
	}
	return p
}

func copyItem(it models.LineItem) models.LineItem {
	if it.Status != nil {
		st := *it.Status
		it.Status = &st
	}
	if it.Snapshot != nil {
		snap := *it.Snapshot
		it.Snapshot = &snap
	}
	it.Product = nil
	return it
}

type memUsers struct{ s *MemoryStore }

func (r *memUsers) Create(_ context.Context, u *models.User) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	u.ID = r.s.data.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memUsers) CreateProfile(_ context.Context, p *models.UserProfile) error {
	defer r.s.lock()()
	if _, ok := r.s.data.profiles[p.UserID]; ok {
		return ErrDuplicate
	}
	p.ID = r.s.data.id()
	r.s.data.profiles[p.UserID] = *p
	return nil
}

func (r *memUsers) GetProfile(_ context.Context, userID int64) (*models.UserProfile, error) {
	defer r.s.lock()()
	p, ok := r.s.data.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

type memCompanies struct{ s *MemoryStore }

func (r *memCompanies) Create(_ context.Context, c *models.Company) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.companies {
		if existing.AdminUserID == c.AdminUserID {
			return ErrDuplicate
		}
	}
	c.ID = r.s.data.id()
	c.CreatedAt = time.Now()
	r.s.data.companies[c.ID] = *c
	return nil
}

func (r *memCompanies) GetByID(_ context.Context, id int64) (*models.Company, error) {
	defer r.s.lock()()
	c, ok := r.s.data.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memCompanies) GetByAdmin(_ context.Context, userID int64) (*models.Company, error) {
	defer r.s.lock()()
	for _, c := range r.s.data.companies {
		if c.AdminUserID == userID {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

type memShops struct{ s *MemoryStore }

func (r *memShops) Create(_ context.Context, shop *models.Shop) error {
	defer r.s.lock()()
	shop.ID = r.s.data.id()
	shop.CreatedAt = time.Now()
	shop.UpdatedAt = shop.CreatedAt
	r.s.data.shops[shop.ID] = *shop
	return nil
}

func (r *memShops) GetByID(_ context.Context, id int64) (*models.Shop, error) {
	defer r.s.lock()()
	shop, ok := r.s.data.shops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &shop, nil
}

func (r *memShops) GetInCompany(ctx context.Context, companyID, shopID int64) (*models.Shop, error) {
	shop, err := r.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return shop, nil
}

func (r *memShops) List(_ context.Context, companyID *int64, page models.Page) ([]models.Shop, int64, error) {
	defer r.s.lock()()
	all := make([]models.Shop, 0)
	for _, shop := range r.s.data.shops {
		if companyID == nil || shop.CompanyID == *companyID {
			all = append(all, shop)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (r *memShops) Update(_ context.Context, shop *models.Shop) error {
	defer r.s.lock()()
	existing, ok := r.s.data.shops[shop.ID]
	if !ok || existing.CompanyID != shop.CompanyID {
		return nil
	}
	shop.UpdatedAt = time.Now()
	r.s.data.shops[shop.ID] = *shop
	return nil
}

func (r *memShops) Delete(_ context.Context, companyID, shopID int64) error {
	defer r.s.lock()()
	shop, ok := r.s.data.shops[shopID]
	if !ok || shop.CompanyID != companyID {
		return ErrNotFound
	}
	delete(r.s.data.shops, shopID)
	for id, p := range r.s.data.products {
		if p.ShopID == shopID {
			r.s.data.deleteProduct(id)
		}
	}
	return nil
}

// deleteProduct removes a product and the rows that reference it.
func (d *memData) deleteProduct(id int64) {
	delete(d.products, id)
	for kind, items := range d.items {
		for itemID, it := range items {
			if it.ProductID == id {
				delete(d.items[kind], itemID)
			}
		}
	}
	for k := range d.ratings {
		if k.productID == id {
			delete(d.ratings, k)
		}
	}
	for k := range d.interactions {
		if k.productID == id {
			delete(d.interactions, k)
		}
	}
}

type memCategories struct{ s *MemoryStore }

func (r *memCategories) List(_ context.Context) ([]models.Category, error) {
	defer r.s.lock()()
	out := make([]models.Category, 0, len(r.s.data.categories))
	for _, c := range r.s.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategories) Get(_ context.Context, id int64) (*models.Category, error) {
	defer r.s.lock()()
	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memCategories) ListSubCategories(_ context.Context, categoryID *int64) ([]models.SubCategory, error) {
	defer r.s.lock()()
	out := make([]models.SubCategory, 0)
	for _, sc := range r.s.data.subCategories {
		if categoryID == nil || sc.CategoryID == *categoryID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategories) GetSubCategory(_ context.Context, id int64) (*models.SubCategory, error) {
	defer r.s.lock()()
	sc, ok := r.s.data.subCategories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sc, nil
}

type memProducts struct{ s *MemoryStore }

func (r *memProducts) Create(_ context.Context, p *models.Product) error {
	defer r.s.lock()()
	p.ID = r.s.data.id()
	p.AverageRating = decimal.Zero
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.data.products[p.ID] = copyProduct(*p)
	return nil
}

func (r *memProducts) GetByID(_ context.Context, id int64) (*models.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = copyProduct(p)
	return &p, nil
}

func (r *memProducts) GetInShop(ctx context.Context, shopID, productID int64) (*models.Product, error) {
	p, err := r.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.ShopID != shopID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (d *memData) matches(p models.Product, q models.ProductQuery) bool {
	category := d.categories[p.CategoryID]
	sub := d.subCategories[p.SubCategoryID]

	if q.ShopID != nil && p.ShopID != *q.ShopID {
		return false
	}
	if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
		return false
	}
	if q.SubCategoryID != nil && p.SubCategoryID != *q.SubCategoryID {
		return false
	}
	if q.CategoryName != "" && !strings.EqualFold(category.Name, q.CategoryName) {
		return false
	}
	if q.SubCategoryName != "" && !strings.EqualFold(sub.Name, q.SubCategoryName) {
		return false
	}
	if q.DiscountBelow.Valid && !(p.DiscountPrice.Valid && p.DiscountPrice.Decimal.LessThan(q.DiscountBelow.Decimal)) {
		return false
	}
	if q.HasDiscount != nil && p.HasDiscount != *q.HasDiscount {
		return false
	}
	if q.RatingAbove.Valid && !p.AverageRating.GreaterThan(q.RatingAbove.Decimal) {
		return false
	}
	if q.PriceAbove.Valid && !p.Price.GreaterThan(q.PriceAbove.Decimal) {
		return false
	}
	if q.PriceBelow.Valid && !p.Price.LessThan(q.PriceBelow.Decimal) {
		return false
	}
	for _, word := range strings.Fields(strings.ToLower(q.Keywords)) {
		hay := []string{p.Name, p.Description, category.Name, sub.Name}
		found := false
		for _, h := range hay {
			if strings.Contains(strings.ToLower(h), word) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.ExcludeID != nil && p.ID == *q.ExcludeID {
		return false
	}
	if q.OnlyDiscounted && !(p.HasDiscount && p.DiscountPrice.Valid) {
		return false
	}
	if q.ExcludeDeleted && p.IsDeleted {
		return false
	}
	if q.OnlyListed && (p.IsDeleted || p.AdminStatus == nil || *p.AdminStatus != models.AdminApproved) {
		return false
	}
	return true
}

// productLess orders products the way the MySQL ORDER BY clauses do, NULLs
// first when ascending and last when descending.
func productLess(sortBy models.ProductSort) func(a, b models.Product) bool {
	nullDecimalLess := func(a, b decimal.NullDecimal) (less, equal bool) {
		switch {
		case !a.Valid && !b.Valid:
			return false, true
		case !a.Valid:
			return true, false
		case !b.Valid:
			return false, false
		}
		return a.Decimal.LessThan(b.Decimal), a.Decimal.Equal(b.Decimal)
	}

	switch sortBy {
	case models.SortDiscountAsc:
		return func(a, b models.Product) bool {
			less, eq := nullDecimalLess(a.DiscountPrice, b.DiscountPrice)
			if eq {
				return a.ID < b.ID
			}
			return less
		}
	case models.SortDiscountDesc:
		return func(a, b models.Product) bool {
			less, eq := nullDecimalLess(b.DiscountPrice, a.DiscountPrice)
			if eq {
				return a.ID < b.ID
			}
			return less
		}
	case models.SortQuantityDesc:
		return func(a, b models.Product) bool {
			qa, qb := a.Quantity, b.Quantity
			switch {
			case qa == nil && qb == nil:
				return a.ID < b.ID
			case qa == nil:
				return false
			case qb == nil:
				return true
			case *qa == *qb:
				return a.ID < b.ID
			}
			return *qa > *qb
		}
	default:
		return func(a, b models.Product) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID > b.ID
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
}

func (r *memProducts) List(_ context.Context, q models.ProductQuery, page models.Page) ([]models.Product, int64, error) {
	defer r.s.lock()()
	all := make([]models.Product, 0)
	for _, p := range r.s.data.products {
		if r.s.data.matches(p, q) {
			all = append(all, copyProduct(p))
		}
	}
	less := productLess(q.Sort)
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	return paginate(all, page), int64(len(all)), nil
}

func (r *memProducts) Update(_ context.Context, p *models.Product) error {
	defer r.s.lock()()
	existing, ok := r.s.data.products[p.ID]
	if !ok || existing.ShopID != p.ShopID {
		return nil
	}
	updated := copyProduct(*p)
	updated.CompanyID = existing.CompanyID
	updated.AverageRating = existing.AverageRating
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.data.products[p.ID] = updated
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *memProducts) Delete(_ context.Context, shopID, productID int64) error {
	defer r.s.lock()()
	p, ok := r.s.data.products[productID]
	if !ok || p.ShopID != shopID {
		return ErrNotFound
	}
	r.s.data.deleteProduct(productID)
	return nil
}

func (r *memProducts) LockForUpdate(_ context.Context, id int64) error {
	defer r.s.lock()()
	if _, ok := r.s.data.products[id]; !ok {
		return ErrNotFound
	}
	return nil
}

func (r *memProducts) RefreshAverageRating(_ context.Context, id int64) (decimal.Decimal, error) {
	defer r.s.lock()()
	p, ok := r.s.data.products[id]
	if !ok {
		return decimal.Zero, ErrNotFound
	}

	sum := decimal.Zero
	n := int64(0)
	for k, rt := range r.s.data.ratings {
		if k.productID == id {
			sum = sum.Add(decimal.NewFromInt(int64(rt.Rating)))
			n++
		}
	}
	avg := decimal.Zero
	if n > 0 {
		avg = sum.DivRound(decimal.NewFromInt(n), 4).Round(2)
	}
	p.AverageRating = avg
	r.s.data.products[id] = p
	return avg, nil
}

type memContainers struct{ s *MemoryStore }

func (r *memContainers) Get(_ context.Context, kind models.ContainerKind, ownerID int64) (*models.Container, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	defer r.s.lock()()
	c, ok := r.s.data.containers[kind][ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memContainers) Create(_ context.Context, kind models.ContainerKind, ownerID int64) (*models.Container, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	defer r.s.lock()()
	if _, ok := r.s.data.containers[kind][ownerID]; ok {
		return nil, ErrDuplicate
	}
	now := time.Now()
	c := models.Container{ID: r.s.data.id(), Kind: kind, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	r.s.data.containers[kind][ownerID] = c
	return &c, nil
}

func (r *memContainers) UpdateDeliveryAddress(_ context.Context, cartID int64, address string) error {
	defer r.s.lock()()
	for owner, c := range r.s.data.containers[models.KindCart] {
		if c.ID == cartID {
			c.DeliveryAddress = address
			c.UpdatedAt = time.Now()
			r.s.data.containers[models.KindCart][owner] = c
		}
	}
	return nil
}

func (d *memData) findItem(kind models.ContainerKind, containerID, productID int64) (models.LineItem, bool) {
	for _, it := range d.items[kind] {
		if it.ContainerID == containerID && it.ProductID == productID {
			return it, true
		}
	}
	return models.LineItem{}, false
}

// withDetails attaches the live product view to a stored item.
func (d *memData) withDetails(it models.LineItem) models.LineItem {
	it = copyItem(it)
	if p, ok := d.products[it.ProductID]; ok {
		it.Product = &models.ProductDetails{
			Name:          p.Name,
			Description:   p.Description,
			Status:        p.Status,
			Price:         p.Price,
			Tax:           p.Tax,
			HasDiscount:   p.HasDiscount,
			DiscountPrice: p.DiscountPrice,
			Currency:      p.Currency,
		}
	}
	return it
}

func (r *memContainers) AddItem(_ context.Context, kind models.ContainerKind, item *models.LineItem) error {
	if _, err := tableFor(kind); err != nil {
		return err
	}
	defer r.s.lock()()
	if _, ok := r.s.data.findItem(kind, item.ContainerID, item.ProductID); ok {
		return ErrDuplicate
	}
	item.ID = r.s.data.id()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	if kind == models.KindWishlist {
		item.Quantity = 0
	}
	r.s.data.items[kind][item.ID] = copyItem(*item)
	return nil
}

func (r *memContainers) GetItem(_ context.Context, kind models.ContainerKind, containerID, productID int64) (*models.LineItem, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	defer r.s.lock()()
	it, ok := r.s.data.findItem(kind, containerID, productID)
	if !ok {
		return nil, ErrNotFound
	}
	it = r.s.data.withDetails(it)
	return &it, nil
}

func (r *memContainers) ListItems(_ context.Context, kind models.ContainerKind, containerID int64, page *models.Page) ([]models.LineItem, int64, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, 0, err
	}
	defer r.s.lock()()
	all := make([]models.LineItem, 0)
	for _, it := range r.s.data.items[kind] {
		if it.ContainerID == containerID {
			all = append(all, r.s.data.withDetails(it))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if page != nil {
		all = paginate(all, *page)
	}
	return all, total, nil
}

func (r *memContainers) UpdateItemQuantity(_ context.Context, kind models.ContainerKind, containerID, productID int64, quantity int) error {
	if kind == models.KindWishlist {
		return ErrUnsupported
	}
	if _, err := tableFor(kind); err != nil {
		return err
	}
	defer r.s.lock()()
	if it, ok := r.s.data.findItem(kind, containerID, productID); ok {
		it.Quantity = quantity
		it.UpdatedAt = time.Now()
		r.s.data.items[kind][it.ID] = it
	}
	return nil
}

func (r *memContainers) UpdateItemStatus(_ context.Context, orderID, productID int64, status string) error {
	defer r.s.lock()()
	if it, ok := r.s.data.findItem(models.KindOrder, orderID, productID); ok {
		st := status
		it.Status = &st
		it.UpdatedAt = time.Now()
		r.s.data.items[models.KindOrder][it.ID] = it
	}
	return nil
}

func (r *memContainers) RemoveItem(_ context.Context, kind models.ContainerKind, containerID, productID int64) error {
	if _, err := tableFor(kind); err != nil {
		return err
	}
	defer r.s.lock()()
	it, ok := r.s.data.findItem(kind, containerID, productID)
	if !ok {
		return ErrNotFound
	}
	delete(r.s.data.items[kind], it.ID)
	return nil
}

func (r *memContainers) ClearItems(_ context.Context, kind models.ContainerKind, containerID int64) (int64, error) {
	if _, err := tableFor(kind); err != nil {
		return 0, err
	}
	defer r.s.lock()()
	var n int64
	for id, it := range r.s.data.items[kind] {
		if it.ContainerID == containerID {
			delete(r.s.data.items[kind], id)
			n++
		}
	}
	return n, nil
}

func (r *memContainers) CountItems(_ context.Context, kind models.ContainerKind, containerID int64) (int64, error) {
	if _, err := tableFor(kind); err != nil {
		return 0, err
	}
	defer r.s.lock()()
	var n int64
	for _, it := range r.s.data.items[kind] {
		if it.ContainerID == containerID {
			n++
		}
	}
	return n, nil
}

type memRatings struct{ s *MemoryStore }

func (r *memRatings) Upsert(_ context.Context, rating *models.Rating) error {
	defer r.s.lock()()
	key := ratingKey{rating.ProductID, rating.UserID}
	now := time.Now()
	if existing, ok := r.s.data.ratings[key]; ok {
		existing.Rating = rating.Rating
		existing.UpdatedAt = now
		r.s.data.ratings[key] = existing
		*rating = existing
		return nil
	}
	rating.ID = r.s.data.id()
	rating.CreatedAt = now
	rating.UpdatedAt = now
	r.s.data.ratings[key] = *rating
	return nil
}

func (r *memRatings) Get(_ context.Context, productID, userID int64) (*models.Rating, error) {
	defer r.s.lock()()
	rt, ok := r.s.data.ratings[ratingKey{productID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &rt, nil
}

func (r *memRatings) Delete(_ context.Context, productID, userID int64) error {
	defer r.s.lock()()
	key := ratingKey{productID, userID}
	if _, ok := r.s.data.ratings[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.ratings, key)
	return nil
}

type memInteractions struct{ s *MemoryStore }

func (r *memInteractions) Touch(_ context.Context, userID, productID int64, interactionType string) error {
	defer r.s.lock()()
	key := interactionKey{userID, productID, interactionType}
	in, ok := r.s.data.interactions[key]
	if !ok {
		in = memInteraction{ProductInteraction: models.ProductInteraction{
			ID:              r.s.data.id(),
			UserID:          userID,
			ProductID:       productID,
			InteractionType: interactionType,
		}}
	}
	in.UpdatedAt = time.Now()
	in.seq = r.s.data.tick()
	r.s.data.interactions[key] = in
	return nil
}

func (r *memInteractions) ListProducts(_ context.Context, userID int64, interactionType string, page models.Page) ([]models.Product, int64, error) {
	defer r.s.lock()()
	matched := make([]memInteraction, 0)
	for k, in := range r.s.data.interactions {
		if k.userID == userID && k.kind == interactionType {
			matched = append(matched, in)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	products := make([]models.Product, 0, len(matched))
	for _, in := range matched {
		if p, ok := r.s.data.products[in.ProductID]; ok {
			products = append(products, copyProduct(p))
		}
	}
	return paginate(products, page), int64(len(matched)), nil
}

func (r *memInteractions) Clear(_ context.Context, userID int64, interactionType string) (int64, error) {
	defer r.s.lock()()
	var n int64
	for k := range r.s.data.interactions {
		if k.userID == userID && k.kind == interactionType {
			delete(r.s.data.interactions, k)
			n++
		}
	}
	return n, nil
}
