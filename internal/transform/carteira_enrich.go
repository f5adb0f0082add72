package transform

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gerencial/internal"
	"gerencial/internal/catalog"
	"gerencial/internal/etlerr"
	"gerencial/internal/util"
)

var (
	reSplitThickness = regexp.MustCompile(`(\d+\.\d+)`)
	reSplitMaterial  = regexp.MustCompile(`(PP|GL|ZN)`)
)

// splitPositions are the exploded rows kept per order; the description lists two
// thickness/material pairs and the cross product puts them at these positions.
var splitPositions = map[int]bool{0: true, 3: true}

// EnrichCarteira runs the cross-table passes over the concatenated backlog and catalog:
// production attribution, CATEGORIA_T splitting, thickness correction, material code
// assembly and stock reconciliation. The input slice is not modified.
func (n *Normalizer) EnrichCarteira(lines []internal.BacklogLine, products []internal.CatalogEntry) ([]internal.BacklogLine, error) {
	out, err := n.enrichCarteira(lines, products)
	if err != nil {
		return nil, stageErr(etlerr.StageBacklogEnrichment, "", err)
	}
	return out, nil
}

func (n *Normalizer) enrichCarteira(lines []internal.BacklogLine, products []internal.CatalogEntry) ([]internal.BacklogLine, error) {
	if n.rules.StockCodePattern == nil {
		return nil, errors.New("stock code pattern not configured")
	}

	work := make([]internal.BacklogLine, len(lines))
	copy(work, lines)

	n.attributeProduction(work)
	split, rest := n.splitByGroup(work)
	n.deriveMaterial(rest)

	work = append(split, rest...)
	sort.SliceStable(work, func(i, j int) bool { return work[i].Order < work[j].Order })

	fixed := n.fixThickness(work)
	n.assembleMaterialCode(work)

	stock := n.BuildStock(products)
	matched := n.reconcileStock(&work, stock)

	n.log.Info("backlog enriched",
		zap.Int("rows_in", len(lines)),
		zap.Int("rows_out", len(work)),
		zap.Int("split_rows", len(split)),
		zap.Int("thickness_fixed", fixed),
		zap.Int("stock_keys", stock.Len()),
		zap.Int("stock_matched", matched))
	return work, nil
}

// attributeProduction applies the production overrides in order; later rules win.
func (n *Normalizer) attributeProduction(lines []internal.BacklogLine) {
	r := n.rules
	for i := range lines {
		l := &lines[i]
		l.Production = l.Company
		if util.In(l.Group, r.BacklogCompanyBGroups) {
			l.Production = util.StringPtr(r.ReassignTo)
		}
		if util.Equals(l.Company, r.RelabelCompany) && util.Equals(l.Group, r.RelabelFrom) {
			l.Group = util.StringPtr(r.RelabelTo)
		}
		if util.Equals(l.Group, r.FlagshipGroup()) && util.HasPrefix(l.Customer, r.FlagshipCustomerPrefix) {
			l.Production = util.StringPtr(r.FlagshipProducer)
		}
	}
}

// splitByGroup separates the split-group rows, explodes each one into its
// (thickness, material) candidates and keeps positions 0 and 3 per order with half
// the open quantity. The remaining rows are returned in their original order.
func (n *Normalizer) splitByGroup(lines []internal.BacklogLine) (split, rest []internal.BacklogLine) {
	position := map[float64]int{}
	for _, l := range lines {
		if !util.Equals(l.Group, n.rules.SplitGroup) {
			l.RealThickness = l.Thickness
			rest = append(rest, l)
			continue
		}
		for _, row := range explodeMaterial(l) {
			pos := position[l.Order]
			position[l.Order]++
			if !splitPositions[pos] {
				continue
			}
			if row.OpenQty != nil {
				row.OpenQty = util.FloatPtr(*row.OpenQty / 2)
			}
			split = append(split, row)
		}
	}
	return split, rest
}

// explodeMaterial expands one line into the cross product of the thickness and
// material tokens of its description. A list with no matches contributes one nil.
func explodeMaterial(l internal.BacklogLine) []internal.BacklogLine {
	desc := util.Deref(l.MaterialDescription)
	thicknesses := candidates(reSplitThickness.FindAllString(desc, -1))
	materials := candidates(reSplitMaterial.FindAllString(desc, -1))

	out := make([]internal.BacklogLine, 0, len(thicknesses)*len(materials))
	for _, t := range thicknesses {
		for _, m := range materials {
			row := l
			row.RealThickness = nil
			if t != nil {
				if f, err := strconv.ParseFloat(*t, 64); err == nil {
					row.RealThickness = &f
				}
			}
			row.Material = m
			out = append(out, row)
		}
	}
	return out
}

func candidates(matches []string) []*string {
	if len(matches) == 0 {
		return []*string{nil}
	}
	out := make([]*string, len(matches))
	for i := range matches {
		out[i] = &matches[i]
	}
	return out
}

func (n *Normalizer) deriveMaterial(lines []internal.BacklogLine) {
	for i := range lines {
		lines[i].Material = remap(n.rules.MaterialLetters, lines[i].Sector)
	}
}

// fixThickness applies the correction table in order and returns how many rewrites happened.
func (n *Normalizer) fixThickness(lines []internal.BacklogLine) int {
	fixed := 0
	for _, fix := range n.rules.ThicknessFixes {
		for i := range lines {
			l := &lines[i]
			if l.RealThickness == nil || *l.RealThickness != fix.From {
				continue
			}
			if !util.HasPrefix(l.Group, fix.GroupPrefix) {
				continue
			}
			l.RealThickness = util.FloatPtr(fix.To)
			fixed++
		}
	}
	return fixed
}

func (n *Normalizer) assembleMaterialCode(lines []internal.BacklogLine) {
	r := n.rules
	for i := range lines {
		l := &lines[i]
		l.ThicknessText = formatThickness(l.RealThickness)

		base := "B"
		if util.In(l.Group, r.CoatedBaseGroups) {
			base = "C"
		}
		letters := "nan"
		if l.Material != nil {
			letters = *l.Material
		}
		code := base + letters + " " + l.ThicknessText

		if util.Equals(l.Sector, r.ResaleSector) {
			code = r.ResaleCode
		}
		if util.HasPrefix(l.Group, r.LaminatedGroupPrefix) && l.Thickness != nil && *l.Thickness > r.LaminatedMinThickness {
			code = strings.ReplaceAll(code, r.LaminatedFrom, r.LaminatedTo)
		}
		code = util.NormalizeCode(code)
		l.Material = &code
	}
}

// BuildStock aggregates catalog stock per (material code, company) for the stock groups.
func (n *Normalizer) BuildStock(products []internal.CatalogEntry) *catalog.Stock {
	r := n.rules
	stock := catalog.NewStock()
	for _, p := range products {
		if p.Group == nil {
			continue
		}
		code, ok := r.StockGroupLetters[*p.Group]
		if !ok {
			continue
		}
		for _, sl := range r.StockSectorLetters {
			if sl.Prefix && util.HasPrefix(p.Sector, sl.Sector) || !sl.Prefix && util.Equals(p.Sector, sl.Sector) {
				code += sl.Letters
			}
		}
		code += " " + formatThickness(p.Thickness)
		if r.StockCodePattern != nil && !r.StockCodePattern.MatchString(code) {
			continue
		}
		stock.Add(util.NormalizeCode(code), p.Company, p.CurrentStock)
	}
	return stock
}

// reconcileStock moves each stock company's lines to the end and merges its stock
// position by material code. Lines of other companies are left as they are.
func (n *Normalizer) reconcileStock(lines *[]internal.BacklogLine, stock *catalog.Stock) int {
	matched := 0
	for _, emp := range n.rules.StockCompanies {
		others := make([]internal.BacklogLine, 0, len(*lines))
		var own []internal.BacklogLine
		for _, l := range *lines {
			if util.Equals(l.Company, emp) {
				own = append(own, l)
			} else {
				others = append(others, l)
			}
		}
		for i := range own {
			qty, ok := stock.Quantity(util.Deref(own[i].Material), emp)
			if !ok {
				continue
			}
			own[i].StockLocation = util.StringPtr(emp)
			own[i].StockQty = util.FloatPtr(qty)
			matched++
		}
		*lines = append(others, own...)
	}
	return matched
}

func formatThickness(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
