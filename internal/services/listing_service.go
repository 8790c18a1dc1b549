package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"inmobiliaria/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

// mysqlErrNoReferencedRow is raised when seller_id points at no seller.
const mysqlErrNoReferencedRow = 1452

var listingSelectColumns = []string{
	"l.id", "l.title", "l.description", "l.category", "l.price", "l.currency",
	"l.area", "l.area_unit", "l.bedrooms", "l.bathrooms", "l.floors", "l.age_years",
	"l.stratum", "l.has_garage", "l.furnished", "l.featured", "l.images",
	"l.address", "l.city", "l.department", "l.lat", "l.lng", "l.status", "l.views",
	"l.terrain", "l.access_road", "l.water_access", "l.electricity_access", "l.crops",
	"l.seller_id", "l.created_at", "l.updated_at",
	"s.id", "s.name", "s.email", "s.phone", "s.whatsapp",
}

var listingWriteColumns = []string{
	"title", "description", "category", "price", "currency", "area", "area_unit",
	"bedrooms", "bathrooms", "floors", "age_years", "stratum", "has_garage",
	"furnished", "featured", "images", "address", "city", "department", "lat", "lng",
	"status", "terrain", "access_road", "water_access", "electricity_access", "crops",
	"seller_id",
}

var (
	selectListingSQL = "SELECT " + strings.Join(listingSelectColumns, ", ") +
		" FROM listings l JOIN sellers s ON s.id = l.seller_id"

	insertListingSQL = "INSERT INTO listings (" + strings.Join(listingWriteColumns, ", ") +
		", created_at, updated_at) VALUES (" + placeholders(len(listingWriteColumns)+2) + ")"

	updateListingSQL = "UPDATE listings SET " + strings.Join(listingWriteColumns, " = ?, ") +
		" = ?, updated_at = ? WHERE id = ?"
)

// ViewDeduper decides whether a detail fetch should count as a new view.
type ViewDeduper interface {
	FirstView(ctx context.Context, listingID int, client string) (bool, error)
}

// ImageRemover drops stored images that belonged to a deleted listing.
type ImageRemover interface {
	RemoveListingImages(ctx context.Context, urls []string)
}

type ListingService struct {
	db     *sql.DB
	logger zerolog.Logger
	views  ViewDeduper
	images ImageRemover
	now    func() time.Time
}

func NewListingService(db *sql.DB, logger zerolog.Logger, views ViewDeduper, images ImageRemover) *ListingService {
	return &ListingService{
		db:     db,
		logger: logger,
		views:  views,
		images: images,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (s *ListingService) CreateListing(ctx context.Context, sellerID int, req *models.ListingRequest) (*models.Listing, error) {
	listing := &models.Listing{
		Currency: models.CurrencyCOP,
		AreaUnit: models.AreaUnitSquareMeters,
		Status:   models.StatusAvailable,
		Images:   []string{},
	}
	applyListingRequest(listing, req)
	if err := validateListing(listing); err != nil {
		return nil, err
	}

	now := s.now()
	listing.SellerID = sellerID
	listing.CreatedAt = now
	listing.UpdatedAt = now

	args, err := listingWriteArgs(listing)
	if err != nil {
		return nil, err
	}
	result, err := s.db.ExecContext(ctx, insertListingSQL, append(args, now, now)...)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Warn().Int("seller_id", sellerID).Msg("Listing references unknown seller")
			return nil, ErrInvalidSellerReference
		}
		s.logger.Error().Err(err).Int("seller_id", sellerID).Msg("Error creating listing")
		return nil, upstreamError("database_error", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, upstreamError("database_error", err)
	}
	listing.ID = int(id)

	s.logger.Info().Int("listing_id", listing.ID).Int("seller_id", sellerID).Str("category", string(listing.Category)).Msg("Listing created")
	return listing, nil
}

// GetListing returns the public detail view and counts the fetch as a view.
// client identifies the caller for the optional dedup window.
func (s *ListingService) GetListing(ctx context.Context, listingID int, client string) (*models.Listing, error) {
	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if !s.shouldCountView(ctx, listingID, client) {
		return listing, nil
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE listings SET views = views + 1 WHERE id = ?", listingID); err != nil {
		s.logger.Error().Err(err).Int("listing_id", listingID).Msg("Error incrementing views")
		return nil, upstreamError("database_error", err)
	}
	listing.Views++
	return listing, nil
}

func (s *ListingService) shouldCountView(ctx context.Context, listingID int, client string) bool {
	if s.views == nil || client == "" {
		return true
	}
	first, err := s.views.FirstView(ctx, listingID, client)
	if err != nil {
		s.logger.Warn().Err(err).Int("listing_id", listingID).Msg("View dedup unavailable, counting view")
		return true
	}
	return first
}

// UpdateListing applies the supplied fields. Only the owner may edit.
func (s *ListingService) UpdateListing(ctx context.Context, sellerID, listingID int, req *models.ListingRequest) (*models.Listing, error) {
	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		s.logger.Warn().Int("listing_id", listingID).Int("seller_id", sellerID).Int("owner_id", listing.SellerID).Msg("Update rejected, not the owner")
		return nil, ErrForbidden
	}

	applyListingRequest(listing, req)
	if err := validateListing(listing); err != nil {
		return nil, err
	}
	listing.UpdatedAt = s.now()

	args, err := listingWriteArgs(listing)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, updateListingSQL, append(args, listing.UpdatedAt, listingID)...); err != nil {
		s.logger.Error().Err(err).Int("listing_id", listingID).Msg("Error updating listing")
		return nil, upstreamError("database_error", err)
	}

	s.logger.Info().Int("listing_id", listingID).Int("seller_id", sellerID).Msg("Listing updated")
	return listing, nil
}

// DeleteListing removes the row and then, best effort, its stored images.
// The two steps are independent: an image failure does not restore the row.
func (s *ListingService) DeleteListing(ctx context.Context, sellerID, listingID int) error {
	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerID != sellerID {
		s.logger.Warn().Int("listing_id", listingID).Int("seller_id", sellerID).Msg("Delete rejected, not the owner")
		return ErrForbidden
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", listingID)
	if err != nil {
		s.logger.Error().Err(err).Int("listing_id", listingID).Msg("Error deleting listing")
		return upstreamError("database_error", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrListingNotFound
	}

	s.logger.Info().Int("listing_id", listingID).Int("seller_id", sellerID).Msg("Listing deleted")

	if s.images != nil && len(listing.Images) > 0 {
		s.images.RemoveListingImages(ctx, listing.Images)
	}
	return nil
}

// ListPublic runs a query built by ParsePublicListingQuery. Seller emails are
// not exposed in the catalogue.
func (s *ListingService) ListPublic(ctx context.Context, q *ListingQuery) (*models.ListingPage, error) {
	page, err := s.list(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, l := range page.Listings {
		if l.Seller != nil {
			l.Seller.Email = ""
		}
	}
	return page, nil
}

func (s *ListingService) ListBySeller(ctx context.Context, q *ListingQuery) (*models.ListingPage, error) {
	return s.list(ctx, q)
}

func (s *ListingService) list(ctx context.Context, q *ListingQuery) (*models.ListingPage, error) {
	var total int
	countSQL := strings.TrimSpace("SELECT COUNT(*) FROM listings l " + q.Where)
	if err := s.db.QueryRowContext(ctx, countSQL, q.Args...).Scan(&total); err != nil {
		s.logger.Error().Err(err).Msg("Error counting listings")
		return nil, upstreamError("database_error", err)
	}

	listings := []*models.Listing{}
	if q.Offset() < total {
		query := selectListingSQL + " " + q.Where + " " + q.OrderBy + " LIMIT ? OFFSET ?"
		args := append(append([]any{}, q.Args...), q.Limit, q.Offset())

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			s.logger.Error().Err(err).Msg("Error querying listings")
			return nil, upstreamError("database_error", err)
		}
		defer rows.Close()

		for rows.Next() {
			l, err := scanListing(rows)
			if err != nil {
				s.logger.Error().Err(err).Msg("Error scanning listing")
				return nil, upstreamError("database_error", err)
			}
			listings = append(listings, l)
		}
		if err := rows.Err(); err != nil {
			return nil, upstreamError("database_error", err)
		}
	}

	return &models.ListingPage{
		Listings:   listings,
		Pagination: NewPagination(q.Page, q.Limit, total),
	}, nil
}

// CountListings returns the number of listings across all sellers.
func (s *ListingService) CountListings(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&total); err != nil {
		return 0, upstreamError("database_error", err)
	}
	return total, nil
}

func (s *ListingService) findListing(ctx context.Context, listingID int) (*models.Listing, error) {
	listing, err := scanListing(s.db.QueryRowContext(ctx, selectListingSQL+" WHERE l.id = ?", listingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("listing_id", listingID).Msg("Error fetching listing")
		return nil, upstreamError("database_error", err)
	}
	return listing, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		l                         models.Listing
		seller                    models.Seller
		description, crops        sql.NullString
		terrain, accessRoad       sql.NullString
		sellerPhone, sellerWhats  sql.NullString
		area, lat, lng            sql.NullFloat64
		bedrooms, bathrooms       sql.NullInt64
		floors, ageYears, stratum sql.NullInt64
		images                    []byte
	)

	err := row.Scan(
		&l.ID, &l.Title, &description, &l.Category, &l.Price, &l.Currency,
		&area, &l.AreaUnit, &bedrooms, &bathrooms, &floors, &ageYears,
		&stratum, &l.HasGarage, &l.Furnished, &l.Featured, &images,
		&l.Address, &l.City, &l.Department, &lat, &lng, &l.Status, &l.Views,
		&terrain, &accessRoad, &l.WaterAccess, &l.ElectricityAccess, &crops,
		&l.SellerID, &l.CreatedAt, &l.UpdatedAt,
		&seller.ID, &seller.Name, &seller.Email, &sellerPhone, &sellerWhats,
	)
	if err != nil {
		return nil, err
	}

	l.Description = description.String
	l.Crops = nullStringPtr(crops)
	l.Area = nullFloatPtr(area)
	l.Lat = nullFloatPtr(lat)
	l.Lng = nullFloatPtr(lng)
	l.Bedrooms = nullIntPtr(bedrooms)
	l.Bathrooms = nullIntPtr(bathrooms)
	l.Floors = nullIntPtr(floors)
	l.AgeYears = nullIntPtr(ageYears)
	l.Stratum = nullIntPtr(stratum)
	if terrain.Valid {
		t := models.Terrain(terrain.String)
		l.Terrain = &t
	}
	if accessRoad.Valid {
		a := models.AccessRoad(accessRoad.String)
		l.AccessRoad = &a
	}

	l.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &l.Images); err != nil {
			return nil, err
		}
	}

	seller.Phone = nullStringPtr(sellerPhone)
	seller.WhatsApp = nullStringPtr(sellerWhats)
	l.Seller = &seller
	return &l, nil
}

func listingWriteArgs(l *models.Listing) ([]any, error) {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return nil, upstreamError("encode_images", err)
	}

	var description any
	if l.Description != "" {
		description = l.Description
	}

	return []any{
		l.Title, description, string(l.Category), l.Price, string(l.Currency), l.Area, string(l.AreaUnit),
		l.Bedrooms, l.Bathrooms, l.Floors, l.AgeYears, l.Stratum, l.HasGarage,
		l.Furnished, l.Featured, string(images), l.Address, l.City, l.Department, l.Lat, l.Lng,
		string(l.Status), enumPtr(l.Terrain), enumPtr(l.AccessRoad), l.WaterAccess, l.ElectricityAccess, l.Crops,
		l.SellerID,
	}, nil
}

// applyListingRequest copies every field present in req onto l. A null
// required field is cleared here and rejected by validateListing.
func applyListingRequest(l *models.Listing, req *models.ListingRequest) {
	setValue(&l.Title, req.Title, "")
	setValue(&l.Description, req.Description, "")
	setValue(&l.Category, req.Category, "")
	setValue(&l.Price, req.Price, 0)
	setValue(&l.Currency, req.Currency, models.CurrencyCOP)
	setPtr(&l.Area, req.Area)
	setValue(&l.AreaUnit, req.AreaUnit, models.AreaUnitSquareMeters)
	setPtr(&l.Bedrooms, req.Bedrooms)
	setPtr(&l.Bathrooms, req.Bathrooms)
	setPtr(&l.Floors, req.Floors)
	setPtr(&l.AgeYears, req.AgeYears)
	setPtr(&l.Stratum, req.Stratum)
	setValue(&l.HasGarage, req.HasGarage, false)
	setValue(&l.Furnished, req.Furnished, false)
	setValue(&l.Featured, req.Featured, false)
	setValue(&l.Images, req.Images, []string{})
	setValue(&l.Address, req.Address, "")
	setValue(&l.City, req.City, "")
	setValue(&l.Department, req.Department, "")
	setPtr(&l.Lat, req.Lat)
	setPtr(&l.Lng, req.Lng)
	setValue(&l.Status, req.Status, models.StatusAvailable)
	setPtr(&l.Terrain, req.Terrain)
	setPtr(&l.AccessRoad, req.AccessRoad)
	setValue(&l.WaterAccess, req.WaterAccess, false)
	setValue(&l.ElectricityAccess, req.ElectricityAccess, false)
	setPtr(&l.Crops, req.Crops)

	l.Title = strings.TrimSpace(l.Title)
	l.Address = strings.TrimSpace(l.Address)
	l.City = strings.TrimSpace(l.City)
	l.Department = strings.TrimSpace(l.Department)

	// The dashboard form sends "" for an unselected option.
	if l.Terrain != nil && *l.Terrain == "" {
		l.Terrain = nil
	}
	if l.AccessRoad != nil && *l.AccessRoad == "" {
		l.AccessRoad = nil
	}
	if l.Crops != nil && strings.TrimSpace(*l.Crops) == "" {
		l.Crops = nil
	}
	if l.Images == nil {
		l.Images = []string{}
	}
}

func validateListing(l *models.Listing) error {
	if l.Title == "" || l.Category == "" || l.Price == 0 || l.Address == "" || l.City == "" || l.Department == "" {
		return ErrMissingRequiredFields
	}

	switch {
	case len([]rune(l.Title)) > 200:
		return validationError("invalid_title", "El título no debe exceder 200 caracteres")
	case len([]rune(l.Description)) > 2000:
		return validationError("invalid_description", "La descripción no debe exceder 2000 caracteres")
	case !l.Category.Valid():
		return validationError("invalid_category", "Tipo de inmueble inválido")
	case l.Price < 0:
		return validationError("invalid_price", "El precio debe ser mayor a 0")
	case !l.Currency.Valid():
		return validationError("invalid_currency", "Moneda inválida")
	case !l.AreaUnit.Valid():
		return validationError("invalid_area_unit", "Unidad de área inválida")
	case !l.Status.Valid():
		return validationError("invalid_status", "Estado inválido")
	case l.Area != nil && (*l.Area < 0 || math.IsNaN(*l.Area)):
		return validationError("invalid_area", "El área debe ser mayor o igual a 0")
	case negative(l.Bedrooms), negative(l.Bathrooms), negative(l.Floors), negative(l.AgeYears):
		return validationError("invalid_count", "Los valores numéricos deben ser mayores o iguales a 0")
	case l.Stratum != nil && (*l.Stratum < 1 || *l.Stratum > 6):
		return validationError("invalid_stratum", "El estrato debe ser entre 1 y 6")
	case l.Lat != nil && (*l.Lat < -90 || *l.Lat > 90):
		return validationError("invalid_lat", "Latitud inválida")
	case l.Lng != nil && (*l.Lng < -180 || *l.Lng > 180):
		return validationError("invalid_lng", "Longitud inválida")
	case l.Terrain != nil && !l.Terrain.Valid():
		return validationError("invalid_terrain", "Topografía inválida")
	case l.AccessRoad != nil && !l.AccessRoad.Valid():
		return validationError("invalid_access_road", "Vía de acceso inválida")
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrNoReferencedRow
}

func setValue[T any](dst *T, n models.Nullable[T], fallback T) {
	if !n.Set {
		return
	}
	if n.Valid {
		*dst = n.Value
	} else {
		*dst = fallback
	}
}

func setPtr[T any](dst **T, n models.Nullable[T]) {
	if n.Set {
		*dst = n.Ptr()
	}
}

func negative(v *int) bool {
	return v != nil && *v < 0
}

func enumPtr[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func nullFloatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
