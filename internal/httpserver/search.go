package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/logging"
	"github.com/tiaadeals/server/internal/service/search"
)

// SearchHTTP serves full-text product search from Elasticsearch. It is only
// routed when an ES client is configured.
type SearchHTTP struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	from, size := pageFromQuery(c)

	total, products, err := search.Search(ctx, h.ES, h.Index, query, from, size)
	if err != nil {
		l.Error("search_error", "error", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "search unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
