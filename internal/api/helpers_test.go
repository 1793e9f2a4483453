package api_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/models"
	"github.com/data2rest/logscope/internal/principal"
)

const (
	testUserID    = "00000000-0000-0000-0000-00000000000a"
	testProjectID = "00000000-0000-0000-0000-000000000001"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

func testPrincipal() models.Principal {
	project := testProjectID

	return models.Principal{ID: testUserID, Username: "alice", ActiveProjectID: &project}
}

// newTestRouter creates a gin engine that signs every request in as p.
func newTestRouter(p models.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		principal.Set(c, p)
		c.Next()
	})

	return r
}

// doRequest performs a GET against the test router and returns the recorder.
func doRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}
