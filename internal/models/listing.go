package models

import "time"

type Category string

const (
	CategoryApartment  Category = "APARTAMENTO"
	CategoryHouse      Category = "CASA"
	CategoryUrbanLot   Category = "LOTE_URBANO"
	CategoryRural      Category = "PREDIO_RURAL"
	CategoryFarm       Category = "FINCA"
	CategoryOffice     Category = "OFICINA"
	CategoryCommercial Category = "LOCAL_COMERCIAL"
	CategoryWarehouse  Category = "BODEGA"
	CategoryOther      Category = "OTRO"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryApartment, CategoryHouse, CategoryUrbanLot, CategoryRural, CategoryFarm,
		CategoryOffice, CategoryCommercial, CategoryWarehouse, CategoryOther:
		return true
	}
	return false
}

type Currency string

const (
	CurrencyCOP Currency = "COP"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	return c == CurrencyCOP || c == CurrencyUSD
}

type AreaUnit string

const (
	AreaUnitSquareMeters AreaUnit = "METROS_CUADRADOS"
	AreaUnitHectares     AreaUnit = "HECTAREAS"
)

func (u AreaUnit) Valid() bool {
	return u == AreaUnitSquareMeters || u == AreaUnitHectares
}

type ListingStatus string

const (
	StatusAvailable ListingStatus = "DISPONIBLE"
	StatusSold      ListingStatus = "VENDIDO"
	StatusReserved  ListingStatus = "RESERVADO"
)

func (s ListingStatus) Valid() bool {
	return s == StatusAvailable || s == StatusSold || s == StatusReserved
}

type Terrain string

const (
	TerrainFlat        Terrain = "PLANA"
	TerrainRolling     Terrain = "ONDULADA"
	TerrainBroken      Terrain = "QUEBRADA"
	TerrainMountainous Terrain = "MONTANOSA"
)

func (t Terrain) Valid() bool {
	switch t {
	case TerrainFlat, TerrainRolling, TerrainBroken, TerrainMountainous:
		return true
	}
	return false
}

type AccessRoad string

const (
	AccessRoadPaved   AccessRoad = "PAVIMENTADA"
	AccessRoadUnpaved AccessRoad = "DESTAPADA"
	AccessRoadTrack   AccessRoad = "TROCHA"
	AccessRoadRiver   AccessRoad = "FLUVIAL"
)

func (a AccessRoad) Valid() bool {
	switch a {
	case AccessRoadPaved, AccessRoadUnpaved, AccessRoadTrack, AccessRoadRiver:
		return true
	}
	return false
}

// Listing is a property record. Images are ordered; the first one is the cover.
type Listing struct {
	ID                int           `json:"id"`
	Title             string        `json:"titulo"`
	Description       string        `json:"descripcion"`
	Category          Category      `json:"tipo"`
	Price             int64         `json:"precio"`
	Currency          Currency      `json:"moneda"`
	Area              *float64      `json:"area"`
	AreaUnit          AreaUnit      `json:"areaUnidad"`
	Bedrooms          *int          `json:"habitaciones"`
	Bathrooms         *int          `json:"banos"`
	Floors            *int          `json:"pisos"`
	AgeYears          *int          `json:"antiguedad"`
	Stratum           *int          `json:"estrato"`
	HasGarage         bool          `json:"tieneGaraje"`
	Furnished         bool          `json:"amoblado"`
	Featured          bool          `json:"destacado"`
	Images            []string      `json:"imagenes"`
	Address           string        `json:"direccion"`
	City              string        `json:"ciudad"`
	Department        string        `json:"departamento"`
	Lat               *float64      `json:"lat"`
	Lng               *float64      `json:"lng"`
	Status            ListingStatus `json:"estado"`
	Views             int           `json:"vistas"`
	Terrain           *Terrain      `json:"topografia"`
	AccessRoad        *AccessRoad   `json:"viaAcceso"`
	WaterAccess       bool          `json:"accesoAgua"`
	ElectricityAccess bool          `json:"accesoLuz"`
	Crops             *string       `json:"cultivos"`
	SellerID          int           `json:"vendedorId"`
	Seller            *Seller       `json:"vendedor,omitempty"`
	CreatedAt         time.Time     `json:"publicadoEn"`
	UpdatedAt         time.Time     `json:"actualizadoEn"`
}

// ListingRequest is the body of create and update calls. Fields left out of
// the JSON document are not Set; on update they keep their stored value.
type ListingRequest struct {
	Title             Nullable[string]        `json:"titulo"`
	Description       Nullable[string]        `json:"descripcion"`
	Category          Nullable[Category]      `json:"tipo"`
	Price             Nullable[int64]         `json:"precio"`
	Currency          Nullable[Currency]      `json:"moneda"`
	Area              Nullable[float64]       `json:"area"`
	AreaUnit          Nullable[AreaUnit]      `json:"areaUnidad"`
	Bedrooms          Nullable[int]           `json:"habitaciones"`
	Bathrooms         Nullable[int]           `json:"banos"`
	Floors            Nullable[int]           `json:"pisos"`
	AgeYears          Nullable[int]           `json:"antiguedad"`
	Stratum           Nullable[int]           `json:"estrato"`
	HasGarage         Nullable[bool]          `json:"tieneGaraje"`
	Furnished         Nullable[bool]          `json:"amoblado"`
	Featured          Nullable[bool]          `json:"destacado"`
	Images            Nullable[[]string]      `json:"imagenes"`
	Address           Nullable[string]        `json:"direccion"`
	City              Nullable[string]        `json:"ciudad"`
	Department        Nullable[string]        `json:"departamento"`
	Lat               Nullable[float64]       `json:"lat"`
	Lng               Nullable[float64]       `json:"lng"`
	Status            Nullable[ListingStatus] `json:"estado"`
	Terrain           Nullable[Terrain]       `json:"topografia"`
	AccessRoad        Nullable[AccessRoad]    `json:"viaAcceso"`
	WaterAccess       Nullable[bool]          `json:"accesoAgua"`
	ElectricityAccess Nullable[bool]          `json:"accesoLuz"`
	Crops             Nullable[string]        `json:"cultivos"`
}

type CreateListingResponse struct {
	Success bool           `json:"success"`
	Listing ListingSummary `json:"inmueble"`
}

type ListingSummary struct {
	ID       int      `json:"id"`
	Title    string   `json:"titulo"`
	Category Category `json:"tipo"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasMore bool `json:"hasMore"`
}

type ListingPage struct {
	Listings   []*Listing
	Pagination Pagination
}

type PublicListingResponse struct {
	Success    bool       `json:"success"`
	Data       []*Listing `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type SellerListingResponse struct {
	Listings   []*Listing `json:"inmuebles"`
	Pagination Pagination `json:"pagination"`
}
