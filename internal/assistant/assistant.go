package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finanz-server/internal/ledger"
	"finanz-server/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxToolRounds bounds the call loop so a misbehaving model cannot
// spin forever.
const maxToolRounds = 4

// Assistant answers finance questions about one account and can act
// on it through the ledger service.
type Assistant struct {
	client *GeminiClient
	db     *gorm.DB
	ledger *ledger.Service
}

func New(client *GeminiClient, db *gorm.DB, svc *ledger.Service) *Assistant {
	return &Assistant{client: client, db: db, ledger: svc}
}

func toolDeclarations() []FunctionDeclaration {
	return []FunctionDeclaration{
		{
			Name:        "get_balance",
			Description: "Returns the current balance and currency of the user's account.",
		},
		{
			Name:        "create_transaction",
			Description: "Records a new transaction on the user's account and updates the balance.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"value": map[string]interface{}{
						"type":        "string",
						"description": "Transaction amount as a decimal string, e.g. \"42.50\".",
					},
					"type": map[string]interface{}{
						"type": "string",
						"enum": []string{"input", "output"},
					},
					"category_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of one of the account's categories.",
					},
					"description": map[string]interface{}{
						"type": "string",
					},
				},
				"required": []string{"value", "type", "category_id"},
			},
		},
	}
}

// Ask runs the question through the model, executing tool calls
// against the account until the model produces a final text answer.
func (a *Assistant) Ask(ctx context.Context, account *models.Account, question string) (string, error) {
	var categories []models.Category
	if err := a.db.Where("account_id = ?", account.ID).Find(&categories).Error; err != nil {
		return "", fmt.Errorf("load categories: %w", err)
	}

	var catLines []string
	for _, cat := range categories {
		catLines = append(catLines, fmt.Sprintf("- %s (id: %s)", cat.Name, cat.ID))
	}
	system := fmt.Sprintf(
		"You are a personal finance assistant. You manage one account (currency %s). "+
			"Use the provided tools to read the balance or record transactions when the user asks for it. "+
			"Available categories:\n%s",
		account.Currency, strings.Join(catLines, "\n"))

	contents := []Content{{Role: "user", Parts: []Part{{Text: question}}}}

	for round := 0; round < maxToolRounds; round++ {
		reply, err := a.client.GenerateContent(ctx, system, contents, toolDeclarations())
		if err != nil {
			return "", err
		}
		contents = append(contents, *reply)

		calls := functionCalls(reply)
		if len(calls) == 0 {
			return textOf(reply), nil
		}

		var results []Part
		for _, call := range calls {
			result := a.dispatch(ctx, account, call)
			results = append(results, Part{FunctionResponse: &FunctionResponse{
				Name:     call.Name,
				Response: result,
			}})
		}
		contents = append(contents, Content{Role: "user", Parts: results})
	}
	return "", fmt.Errorf("tool loop did not converge after %d rounds", maxToolRounds)
}

func functionCalls(c *Content) []*FunctionCall {
	var calls []*FunctionCall
	for i := range c.Parts {
		if c.Parts[i].FunctionCall != nil {
			calls = append(calls, c.Parts[i].FunctionCall)
		}
	}
	return calls
}

func textOf(c *Content) string {
	var parts []string
	for _, p := range c.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// dispatch executes one tool call. Errors go back to the model as a
// result payload so it can explain the failure to the user.
func (a *Assistant) dispatch(ctx context.Context, account *models.Account, call *FunctionCall) map[string]interface{} {
	switch call.Name {
	case "get_balance":
		var fresh models.Account
		if err := a.db.WithContext(ctx).First(&fresh, "id = ?", account.ID).Error; err != nil {
			return map[string]interface{}{"error": "failed to load account"}
		}
		return map[string]interface{}{
			"balance":  fresh.CurrentValue.StringFixed(2),
			"currency": fresh.Currency,
		}

	case "create_transaction":
		var args struct {
			Value       string `json:"value"`
			Type        string `json:"type"`
			CategoryID  string `json:"category_id"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return map[string]interface{}{"error": "invalid arguments"}
		}
		value, err := decimal.NewFromString(args.Value)
		if err != nil {
			return map[string]interface{}{"error": "value must be a decimal string"}
		}
		created, err := a.ledger.CreateTransaction(ledger.EntryInput{
			AccountID:   account.ID,
			CategoryID:  args.CategoryID,
			Value:       value,
			Type:        args.Type,
			Description: args.Description,
		})
		if err != nil {
			return map[string]interface{}{"error": err.Error()}
		}
		return map[string]interface{}{
			"transaction_id": created.ID,
			"value":          created.Value.StringFixed(2),
			"type":           created.Type,
		}

	default:
		return map[string]interface{}{"error": "unknown tool " + call.Name}
	}
}
