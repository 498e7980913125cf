package dialogue

import (
	"fmt"
	"strings"

	"bistro/internal/models"

	"github.com/shopspring/decimal"
)

const (
	greetingText    = "Welcome to AI Bistro! How can I help you today?"
	clarifyText     = "I'm not sure what you're looking for. Would you like to order a pizza, pasta, salad, appetizer, or dessert?"
	itemMissingText = "I couldn't find that item. Please try again."
	nextCategory    = "What else would you like to order? (pizza, pasta, salad, appetizer, dessert)"
	askMoreText     = "Would you like to order anything else? (yes/no)"
	askConfirmText  = "Would you like to confirm this order? (yes/no)"
	canceledText    = "Order canceled. Would you like to start over? (yes/no)"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func optionsText(category models.MenuCategory, items []models.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are our %s options:\n", category)
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s - %s - %s\n", i+1, item.Name, money(item.Price), item.Description)
	}
	b.WriteString("\nPlease enter the number of the item you'd like to order.")
	return b.String()
}

func emptyCategoryText(category models.MenuCategory) string {
	return fmt.Sprintf("Sorry, we don't have any %s available right now.", category)
}

func askQuantityText(item models.MenuItem) string {
	return fmt.Sprintf("How many %s would you like? (Please enter a number)", item.Name)
}

func addedText(quantity int, item models.MenuItem) string {
	return fmt.Sprintf("Added %d %s to your order. %s", quantity, item.Name, askMoreText)
}

func summaryText(lines []DraftLine, total decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("Here's your order summary:\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %d x %s - %s\n", i+1, l.Quantity, l.Item.Name, money(l.Amount()))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n%s", money(total), askConfirmText)
	return b.String()
}

func completedText(total decimal.Decimal) string {
	return fmt.Sprintf("Thank you! Your order has been added to your cart. Your total is %s. You can now proceed to checkout.", money(total))
}
