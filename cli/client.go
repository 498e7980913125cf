package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// ApiClient talks to the Bistro API. Without a token it shops
// anonymously under a fresh cart ID.
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
	CartID     string
}

// NewApiClient creates a new API client from BISTRO_API_URL and BISTRO_TOKEN
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("BISTRO_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 20,
		},
		BaseURL: baseURL,
		Token:   os.Getenv("BISTRO_TOKEN"),
		CartID:  uuid.NewString(),
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return nil
}

// Turn is one assistant reply
type Turn struct {
	ConversationID string      `json:"conversation_id"`
	Reply          string      `json:"reply"`
	Phase          string      `json:"phase"`
	Completed      bool        `json:"completed"`
	Draft          []DraftLine `json:"draft"`
	Total          string      `json:"total"`
}

// DraftLine is an item waiting for confirmation
type DraftLine struct {
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// MenuItem represents a dish on the menu
type MenuItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// CartLine is one item in the cart
type CartLine struct {
	MenuItemID string `json:"MenuItemID"`
	Name       string `json:"Name"`
	Price      string `json:"Price"`
	Quantity   int    `json:"Quantity"`
}

// Cart is the current cart with its totals
type Cart struct {
	Lines  []CartLine `json:"lines"`
	Totals struct {
		Subtotal    string `json:"subtotal"`
		Tax         string `json:"tax"`
		DeliveryFee string `json:"delivery_fee"`
		Total       string `json:"total"`
	} `json:"totals"`
}

// Order represents a placed order
type Order struct {
	ID     uint   `json:"ID"`
	Status string `json:"Status"`
	Total  string `json:"Total"`
}

// StartConversation opens an assistant conversation and returns the greeting
func (c *ApiClient) StartConversation(mode string) (*Turn, error) {
	var turn Turn
	err := c.do(http.MethodPost, "/api/v1/conversations", map[string]string{"mode": mode}, &turn)
	return &turn, err
}

// SendTurn sends one utterance to a conversation
func (c *ApiClient) SendTurn(conversationID, text string) (*Turn, error) {
	var turn Turn
	err := c.do(http.MethodPost, "/api/v1/conversations/"+conversationID+"/turns", map[string]string{"text": text}, &turn)
	return &turn, err
}

// CloseConversation ends a conversation
func (c *ApiClient) CloseConversation(conversationID string) error {
	return c.do(http.MethodDelete, "/api/v1/conversations/"+conversationID, nil, nil)
}

// GetMenu lists the menu, optionally for one category
func (c *ApiClient) GetMenu(category string) ([]MenuItem, error) {
	path := "/api/v1/menu"
	if category != "" {
		path += "?category=" + category
	}
	var items []MenuItem
	err := c.do(http.MethodGet, path, nil, &items)
	return items, err
}

// GetCart returns the current cart
func (c *ApiClient) GetCart() (*Cart, error) {
	var cart Cart
	err := c.do(http.MethodGet, "/api/v1/cart", nil, &cart)
	return &cart, err
}

// Checkout places an order; it needs a signed-in user
func (c *ApiClient) Checkout(address string) (*Order, error) {
	var order Order
	err := c.do(http.MethodPost, "/api/v1/orders", map[string]string{"address": address}, &order)
	return &order, err
}

func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("X-Cart-ID", c.CartID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
