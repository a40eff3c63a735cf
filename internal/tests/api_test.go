// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RomainLafont/project-g/internal/config"
	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/router"
)

// APITestSuite drives the full order lifecycle through the HTTP surface:
// registration, order intake, quoting, acceptance and production tracking.
type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	dentistToken  string
	supplierToken string
	supplierID    string
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Quote{},
		&models.PricingFactor{},
		&models.ChatMessage{},
		&models.File{},
		&models.AuditLog{},
	))

	s.Require().NoError(i18n.Initialize("../i18n/locales"))

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Upload: config.UploadConfig{
			MaxFileSizeMB: 10,
			LocalDir:      s.T().TempDir(),
			TokenTTLHours: 24,
		},
		I18n: config.I18nConfig{DefaultLocale: "en"},
	}

	s.router = router.Initialize(db, cfg)
}

func (s *APITestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (s *APITestSuite) data(w *httptest.ResponseRecorder) map[string]interface{} {
	response := s.decode(w)
	s.Require().Equal(true, response["success"], "body: %s", w.Body.String())
	return response["data"].(map[string]interface{})
}

func (s *APITestSuite) TestOrderLifecycle() {
	// Register both parties
	w := s.request("POST", "/api/v1/auth/register", map[string]interface{}{
		"username":      "dr_flow",
		"email":         "flow@example.com",
		"password":      "Str0ngPass!",
		"role":          "dentist",
		"practice_name": "Flow Dental",
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	data := s.data(w)
	s.dentistToken = data["token"].(string)

	w = s.request("POST", "/api/v1/auth/register", map[string]interface{}{
		"username":     "lab_flow",
		"email":        "lab-flow@example.com",
		"password":     "Str0ngPass!",
		"role":         "supplier",
		"company_name": "Flow Lab",
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	data = s.data(w)
	s.supplierToken = data["token"].(string)
	s.supplierID = data["user"].(map[string]interface{})["id"].(string)

	// Dentist opens an order
	w = s.request("POST", "/api/v1/orders", map[string]interface{}{
		"supplier_id":     s.supplierID,
		"title":           "Upper molar crown",
		"prosthesis_type": "crown",
		"material":        "zirconia",
	}, s.dentistToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	order := s.data(w)["order"].(map[string]interface{})
	orderID := order["id"].(string)
	s.Equal("quote_asked", order["status"])
	s.Equal("ORD-000001", order["order_number"])

	// Supplier cannot be the one opening orders
	w = s.request("POST", "/api/v1/orders", map[string]interface{}{
		"supplier_id":     s.supplierID,
		"title":           "Nope",
		"prosthesis_type": "crown",
	}, s.supplierToken)
	s.Equal(http.StatusForbidden, w.Code)

	// Supplier issues a quote
	w = s.request("POST", "/api/v1/orders/"+orderID+"/quotes", map[string]interface{}{
		"base_price":    400.0,
		"material_cost": 100.0,
	}, s.supplierToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	quote := s.data(w)["quote"].(map[string]interface{})
	quoteID := quote["id"].(string)
	s.Equal(500.0, quote["total"])
	s.Equal(500.0, quote["adjusted_price"], "no pricing rules, neutral factor")

	// Dentist accepts; pricing snapshot lands on the order
	w = s.request("POST", "/api/v1/quotes/"+quoteID+"/accept", nil, s.dentistToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request("GET", "/api/v1/orders/"+orderID, nil, s.dentistToken)
	s.Require().Equal(http.StatusOK, w.Code)
	order = s.data(w)["order"].(map[string]interface{})
	s.Equal("quote_validated", order["status"])
	s.Equal(500.0, order["adjusted_quote"])

	// Supplier walks the order through production to delivery
	for _, status := range []string{"in_production", "in_shipping", "delivered"} {
		w = s.request("PATCH", "/api/v1/orders/"+orderID+"/status", map[string]interface{}{
			"status": status,
		}, s.supplierToken)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}

	// Terminal: no further moves
	w = s.request("PATCH", "/api/v1/orders/"+orderID+"/status", map[string]interface{}{
		"status": "cancelled",
	}, s.supplierToken)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	// The conversation recorded the whole history as system messages
	w = s.request("GET", "/api/v1/orders/"+orderID+"/messages", nil, s.dentistToken)
	s.Require().Equal(http.StatusOK, w.Code)
	response := s.decode(w)
	messages := response["data"].([]interface{})
	s.GreaterOrEqual(len(messages), 5, "creation, quote, acceptance, three status moves")
}

func (s *APITestSuite) TestUnauthenticatedRequestsRejected() {
	w := s.request("GET", "/api/v1/orders", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.request("GET", "/api/v1/orders", nil, "not-a-token")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestAdminRoutesRequireAdminRole() {
	w := s.request("POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "dr_plain",
		"email":    "plain@example.com",
		"password": "Str0ngPass!",
		"role":     "dentist",
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code)
	token := s.data(w)["token"].(string)

	w = s.request("GET", "/api/v1/admin/users", nil, token)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("POST", "/api/v1/admin/pricing-factors", map[string]interface{}{
		"name":   "sneaky markup",
		"factor": 2.0,
	}, token)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestHealthEndpoint() {
	w := s.request("GET", "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
