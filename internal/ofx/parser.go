// Package ofx imports OFX/QFX bank and credit card statements as financial
// snapshots.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser converts OFX/QFX statements into snapshots.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default()}
}

// statementEntry is one transaction with the statement it came from.
type statementEntry struct {
	tx         ofxgo.Transaction
	creditCard bool
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseSnapshot reads a statement and sorts its transactions into a snapshot
// with the given mood and emotional tags. Each collection keeps its largest
// entries up to model.MaxItemsPerCollection.
func (p *Parser) ParseSnapshot(ctx context.Context, reader io.Reader, mood int, tags []string) (model.Snapshot, error) {
	entries, periodEnd, err := p.readStatements(ctx, reader)
	if err != nil {
		return model.Snapshot{}, err
	}

	snapshot := model.Snapshot{
		Timestamp:     periodEnd,
		EmotionalTags: tags,
		Mood:          mood,
	}

	var skipped int
	for _, entry := range entries {
		item, kind, ok := p.convertTransaction(entry)
		if !ok {
			skipped++
			continue
		}

		switch kind {
		case model.CategoryTypeIncome:
			snapshot.Income = append(snapshot.Income, item)
		case model.CategoryTypeFixed:
			snapshot.FixedExpenses = append(snapshot.FixedExpenses, item)
		case model.CategoryTypeDebt:
			snapshot.Debts = append(snapshot.Debts, item)
		default:
			snapshot.VariableExpenses = append(snapshot.VariableExpenses, item)
		}
	}

	snapshot.Income = p.keepLargest("income", snapshot.Income)
	snapshot.FixedExpenses = p.keepLargest("fixedExpenses", snapshot.FixedExpenses)
	snapshot.VariableExpenses = p.keepLargest("variableExpenses", snapshot.VariableExpenses)
	snapshot.Debts = p.keepLargest("debts", snapshot.Debts)

	p.logger.Info("Imported OFX statement",
		"transactions", len(entries),
		"skipped", skipped,
		"income", len(snapshot.Income),
		"fixed", len(snapshot.FixedExpenses),
		"variable", len(snapshot.VariableExpenses),
		"debts", len(snapshot.Debts))

	return snapshot, nil
}

// readStatements parses every bank and credit card statement in the file and
// returns their transactions plus the latest statement end date.
func (p *Parser) readStatements(ctx context.Context, reader io.Reader) ([]statementEntry, time.Time, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		entries   []statementEntry
		periodEnd time.Time
		found     int
	)

	collect := func(list *ofxgo.TransactionList, creditCard bool) {
		found++
		if list == nil {
			return
		}
		if list.DtEnd.After(periodEnd) {
			periodEnd = list.DtEnd.Time
		}
		for _, tx := range list.Transactions {
			entries = append(entries, statementEntry{tx: tx, creditCard: creditCard})
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			collect(stmt.BankTranList, false)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			collect(stmt.BankTranList, true)
		}
	}

	if found == 0 {
		return nil, time.Time{}, fmt.Errorf("OFX file contains no bank or credit card statements")
	}

	return entries, periodEnd.UTC(), nil
}

// convertTransaction maps one transaction to a line item and the collection
// it belongs to. It reports false for entries that are not spending or
// income, such as payments received on a credit card.
func (p *Parser) convertTransaction(entry statementEntry) (model.LineItem, model.CategoryType, bool) {
	tx := entry.tx
	trnType := tx.TrnType.String()

	amountFloat, _ := tx.TrnAmt.Float64()
	amount := decimal.NewFromFloat(amountFloat).Round(2)
	if amount.IsZero() {
		return model.LineItem{}, "", false
	}

	posted := tx.DtPosted.Time.UTC()
	item := model.LineItem{
		Date:   &posted,
		ID:     string(tx.FiTID),
		Name:   p.itemName(tx, trnType),
		Amount: amount.Abs(),
	}

	if amount.IsPositive() {
		if entry.creditCard {
			p.logger.Debug("Skipping credit card credit", "fitid", item.ID, "type", trnType)
			return model.LineItem{}, "", false
		}
		switch trnType {
		case "DIRECTDEP":
			item.Category = model.CategorySalary
			item.IsRecurring = true
		case "INT", "DIV":
			item.Category = model.CategoryInvestment
		default:
			item.Category = model.CategoryOtherIncome
		}
		return item, model.CategoryTypeIncome, true
	}

	switch trnType {
	case "PAYMENT", "FEE", "SRVCHG":
		item.Category = model.CategoryLoan
		return item, model.CategoryTypeDebt, true
	case "REPEATPMT", "DIRECTDEBIT":
		item.Category = model.CategorySubscriptions
		item.IsRecurring = true
		return item, model.CategoryTypeFixed, true
	default:
		item.Category = model.CategoryOther
		return item, model.CategoryTypeVariable, true
	}
}

func (p *Parser) itemName(tx ofxgo.Transaction, trnType string) string {
	name := extractMerchantName(tx)
	if name == "" {
		name = trnType
	}
	if len(name) > model.MaxNameLength {
		name = strings.TrimSpace(name[:model.MaxNameLength])
	}
	return name
}

// keepLargest trims items to the collection limit, keeping the largest
// amounts in their original order.
func (p *Parser) keepLargest(collection string, items []model.LineItem) []model.LineItem {
	if len(items) <= model.MaxItemsPerCollection {
		return items
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].Amount.GreaterThan(items[order[b]].Amount)
	})

	keep := order[:model.MaxItemsPerCollection]
	sort.Ints(keep)

	trimmed := make([]model.LineItem, 0, len(keep))
	for _, i := range keep {
		trimmed = append(trimmed, items[i])
	}

	p.logger.Warn("Dropped smallest statement entries",
		"collection", collection,
		"dropped", len(items)-len(trimmed))
	return trimmed
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
