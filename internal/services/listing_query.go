package services

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"inmobiliaria/internal/models"
)

const (
	PublicPageSize = 24
	SellerPageSize = 10
	MaxPageSize    = 100
)

var errInvalidFilterValue = errors.New("invalid filter value")

// predicate is one fragment of a WHERE clause together with its arguments.
type predicate struct {
	clause string
	args   []any
}

// filterBuilder turns the raw value of one query parameter into a predicate.
// It is only called for non-empty values.
type filterBuilder func(raw string) (predicate, error)

type listingFilter struct {
	param string
	build filterBuilder
}

// publicListingFilters is the full set of filters the public listing accepts,
// in the order their predicates are joined.
var publicListingFilters = []listingFilter{
	{"estado", equals("l.status")},
	{"tipo", equals("l.category")},
	{"ciudad", containsFold("l.city")},
	{"departamento", containsFold("l.department")},
	{"minPrecio", intCompare("l.price", ">=")},
	{"maxPrecio", intCompare("l.price", "<=")},
	{"minHabitaciones", intCompare("l.bedrooms", "=")},
	{"minBanos", intCompare("l.bathrooms", "=")},
	{"minArea", floatCompare("l.area", ">=")},
	{"maxArea", floatCompare("l.area", "<=")},
	{"estrato", intCompare("l.stratum", "=")},
	{"destacado", boolEquals("l.featured")},
	{"tieneGaraje", boolEquals("l.has_garage")},
	{"amoblado", boolEquals("l.furnished")},
	{"accesoAgua", boolEquals("l.water_access")},
	{"accesoLuz", boolEquals("l.electricity_access")},
	{"topografia", equals("l.terrain")},
	{"viaAcceso", equals("l.access_road")},
	{"search", searchAny("l.title", "l.description", "l.city", "l.address", "l.department")},
}

var listingOrderColumns = map[string]string{
	"publicadoEn": "l.created_at",
	"precio":      "l.price",
	"area":        "l.area",
}

type ListingQuery struct {
	Where   string
	Args    []any
	OrderBy string
	Page    int
	Limit   int
}

func (q *ListingQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParsePublicListingQuery builds the query behind the public catalogue. Status
// defaults to available when the caller does not choose one.
func ParsePublicListingQuery(params url.Values) (*ListingQuery, error) {
	if strings.TrimSpace(params.Get("estado")) == "" {
		params = cloneValues(params)
		params.Set("estado", string(models.StatusAvailable))
	}

	var preds []predicate
	for _, f := range publicListingFilters {
		raw := strings.TrimSpace(params.Get(f.param))
		if raw == "" {
			continue
		}
		p, err := f.build(raw)
		if err != nil {
			return nil, validationError("invalid_filter", "Valor inválido para el filtro "+f.param)
		}
		preds = append(preds, p)
	}

	q := &ListingQuery{}
	q.Where, q.Args = joinPredicates(preds)

	orderBy, err := parseOrdering(params.Get("orderBy"), params.Get("orderDir"))
	if err != nil {
		return nil, err
	}
	q.OrderBy = orderBy

	if q.Page, q.Limit, err = parsePaging(params, PublicPageSize); err != nil {
		return nil, err
	}
	return q, nil
}

// SellerListingQuery lists one seller's own listings, newest first.
func SellerListingQuery(sellerID int, params url.Values) (*ListingQuery, error) {
	page, limit, err := parsePaging(params, SellerPageSize)
	if err != nil {
		return nil, err
	}
	return &ListingQuery{
		Where:   "WHERE l.seller_id = ?",
		Args:    []any{sellerID},
		OrderBy: "ORDER BY l.created_at DESC, l.id DESC",
		Page:    page,
		Limit:   limit,
	}, nil
}

func NewPagination(page, limit, total int) models.Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return models.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasMore: (page-1)*limit+limit < total,
	}
}

func equals(column string) filterBuilder {
	return func(raw string) (predicate, error) {
		return predicate{clause: column + " = ?", args: []any{raw}}, nil
	}
}

func containsFold(column string) filterBuilder {
	return func(raw string) (predicate, error) {
		return predicate{clause: "LOWER(" + column + ") LIKE ?", args: []any{likePattern(raw)}}, nil
	}
}

func intCompare(column, op string) filterBuilder {
	return func(raw string) (predicate, error) {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return predicate{}, errInvalidFilterValue
		}
		return predicate{clause: column + " " + op + " ?", args: []any{v}}, nil
	}
}

func floatCompare(column, op string) filterBuilder {
	return func(raw string) (predicate, error) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return predicate{}, errInvalidFilterValue
		}
		return predicate{clause: column + " " + op + " ?", args: []any{v}}, nil
	}
}

func boolEquals(column string) filterBuilder {
	return func(raw string) (predicate, error) {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return predicate{}, errInvalidFilterValue
		}
		return predicate{clause: column + " = ?", args: []any{v}}, nil
	}
}

func searchAny(columns ...string) filterBuilder {
	return func(raw string) (predicate, error) {
		pattern := likePattern(raw)
		parts := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, c := range columns {
			parts[i] = "LOWER(" + c + ") LIKE ?"
			args[i] = pattern
		}
		return predicate{clause: "(" + strings.Join(parts, " OR ") + ")", args: args}, nil
	}
}

func joinPredicates(preds []predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	clauses := make([]string, len(preds))
	var args []any
	for i, p := range preds {
		clauses[i] = p.clause
		args = append(args, p.args...)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func parseOrdering(field, dir string) (string, error) {
	if field == "" {
		field = "publicadoEn"
	}
	column, ok := listingOrderColumns[field]
	if !ok {
		return "", validationError("invalid_order", "Campo de ordenamiento inválido")
	}

	switch strings.ToLower(dir) {
	case "", "desc":
		dir = "DESC"
	case "asc":
		dir = "ASC"
	default:
		return "", validationError("invalid_order", "Dirección de ordenamiento inválida")
	}
	return "ORDER BY " + column + " " + dir + ", l.id " + dir, nil
}

func parsePaging(params url.Values, defaultLimit int) (page, limit int, err error) {
	page, limit = 1, defaultLimit
	if raw := params.Get("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, validationError("invalid_page", "Página inválida")
		}
	}
	if raw := params.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return 0, 0, validationError("invalid_limit", "Límite inválido")
		}
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, nil
}

// likePattern lowercases the needle and escapes LIKE wildcards so user input
// only ever matches literally.
func likePattern(raw string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(raw)) + "%"
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
