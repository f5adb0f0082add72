package internal

import (
	"time"

	"gerencial/internal/source"
)

const (
	CompanyA = "Empresa_A"
	CompanyB = "Empresa_B"
	CompanyC = "Empresa_C"
)

// Dataset kinds, one extract per company each.
type Dataset string

const (
	DatasetProdutos    Dataset = "produtos"
	DatasetProducao    Dataset = "producao"
	DatasetFaturamento Dataset = "faturamento"
	DatasetCarteira    Dataset = "carteira"
	DatasetF9          Dataset = "f9"
)

var Datasets = []Dataset{DatasetProdutos, DatasetProducao, DatasetFaturamento, DatasetCarteira, DatasetF9}

type CatalogEntry struct {
	Code            string
	Description     source.Value
	StockUnit       *string
	Thickness       *float64
	Width           *float64
	Length          *float64
	Group           *string
	Sector          *string
	ProductionGroup *string
	CurrentStock    *float64
	Company         string
}

// ProductRef is the join projection of a catalog entry.
type ProductRef struct {
	Code      string
	StockUnit *string
	Thickness *float64
	Width     *float64
	Length    *float64
	Sector    *string
	Group     *string
}

func (e CatalogEntry) Ref() ProductRef {
	return ProductRef{
		Code:      e.Code,
		StockUnit: e.StockUnit,
		Thickness: e.Thickness,
		Width:     e.Width,
		Length:    e.Length,
		Sector:    e.Sector,
		Group:     e.Group,
	}
}

type ProductionRecord struct {
	Product          int64
	ProducedAt       *time.Time
	ProductionOrder  source.Value
	Description      source.Value
	Lot              int64
	Quantity         *float64
	Unit             source.Value
	Machine          *string
	ProductionGroup  source.Value
	WeighResponsible *string
	Company          string
	Ref              *ProductRef
}

type InvoiceLine struct {
	Invoice          source.Value
	Order            source.Value
	Customer         *string
	Product          source.Value
	Description      source.Value
	ProductsTotal    *float64
	NetWeight        *float64
	Quantity         *float64
	Unit             source.Value
	UnitValue        *float64
	NetTotal         *float64
	InvoicedAt       *time.Time
	Name             source.Value
	Company          string
	Sector           *string
	Group            *string
	Thickness        source.Value
	Width            *float64
	Commission       source.Value
	DeliveryType     *string
	Delivery         *string
	ValuePerKg       *float64
	WeightPerPiece   *float64
	ProducingCompany string
}

type ApprovalRecord struct {
	Order       string
	Status      source.Value
	Description source.Value
	Delivery    *string
}

type BacklogLine struct {
	IssuedAt            *time.Time
	Order               float64
	SKU                 source.Value
	MaterialDescription *string
	OrderedQty          source.Value
	OpenQty             *float64
	PieceQty            source.Value
	AvailableQty        *float64
	ReservedQty         source.Value
	Unit                source.Value
	NetWeight           *float64
	TotalValue          *float64
	Status              source.Value
	ApprovedAt          *time.Time
	Customer            *string
	Seller              source.Value
	Company             *string
	Color               source.Value
	Delivery            *string

	// Joined from the catalog; all nil when the SKU has no match.
	CatalogCode *string
	Group       *string
	Thickness   *float64
	Sector      *string

	// Filled by the enrichment passes.
	Production    *string
	RealThickness *float64
	ThicknessText string
	Material      *string
	StockLocation *string
	StockQty      *float64
}

// Run statuses recorded in the ledger.
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
)

// RunRecord is one pipeline run as kept in the ledger.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Error      string
	OutputPath string
	Counts     map[string]int
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// AttachmentRow is an extract saved from a collected message.
type AttachmentRow struct {
	ID       int
	EmailID  int
	FileName string
	Path     string
	Hash     string
}
