package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/view"
)

// handleFilterGlaciers recomputes the filtered subset from widget state.
// GET /api/v1/glaciers?first_meas=1950&min_years=4&classification=5&require=mass_balance
//
// This is the widget-state translation boundary: an absent or empty
// multi-select parameter means "no filter", never "match nothing".
func (s *Server) handleFilterGlaciers(c *gin.Context) {
	pred, ok := s.predicateFromQuery(c)
	if !ok {
		return
	}

	start := time.Now()
	result := dataset.Filter(s.store.Glaciers(), pred)
	dataPoints := s.store.DataPointCount(result.Subset)
	s.metrics.FilterRequests.Inc()
	s.metrics.FilterDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"markers": view.Markers(result.Subset),
		},
		"meta": gin.H{
			"count":            result.Count,
			"earliest_year":    result.EarliestYear,
			"country_count":    result.CountryCount,
			"data_point_count": dataPoints,
		},
	})
}

// handleGetGlacier returns the detail panel and chart specs for one site.
// GET /api/v1/glaciers/:id
//
// An id that is not in the dataset resolves to the default site; the
// dashboard always shows something.
func (s *Server) handleGetGlacier(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid glacier id"})
		return
	}

	s.respondSelection(c, &id)
}

// handleSelect resolves a map click event to a site selection.
// POST /api/v1/select with the widget's click payload; an empty body means no
// click has happened yet and selects the default site.
func (s *Server) handleSelect(c *gin.Context) {
	var selected *int

	if c.Request.ContentLength != 0 {
		var ev view.ClickEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid click event"})
			return
		}
		selected = view.SelectedID(&ev)
	}

	s.respondSelection(c, selected)
}

func (s *Server) respondSelection(c *gin.Context, selected *int) {
	sel, err := dataset.Resolve(s.store, s.cfg.DefaultGlacierID, selected)
	if err != nil {
		// Only reachable when the configured default site is missing from the
		// dataset, which startup validation should have caught.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.metrics.SelectionRequests.Inc()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"detail": sel.Detail,
			"series": sel.Series,
			"charts": view.Charts(sel),
		},
	})
}

// handleFilterOptions returns the dropdown vocabularies for the filter panel.
// GET /api/v1/meta/filters
func (s *Server) handleFilterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"primary_classifications": dataset.PrimaryClassificationOptions(),
			"forms":                   dataset.FormOptions(),
			"frontal_characteristics": dataset.FrontalCharacteristicOptions(),
		},
	})
}

// predicateFromQuery translates raw widget state into a Predicate. Writes the
// error response and returns false when a parameter is malformed.
func (s *Server) predicateFromQuery(c *gin.Context) (dataset.Predicate, bool) {
	pred := dataset.DefaultPredicate()

	if v := c.Query("first_meas"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid first_meas"})
			return pred, false
		}
		pred.MaxFirstMeasurementYear = year
	}

	if v := c.Query("min_years"); v != "" {
		years, err := strconv.Atoi(v)
		if err != nil || years < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_years"})
			return pred, false
		}
		pred.MinYearsOfMeasurement = years
	}

	var ok bool
	if pred.PrimaryClassifications, ok = codesFromQuery(c, "classification"); !ok {
		return pred, false
	}
	if pred.Forms, ok = codesFromQuery(c, "form"); !ok {
		return pred, false
	}
	if pred.FrontalCharacteristics, ok = codesFromQuery(c, "frontal"); !ok {
		return pred, false
	}

	for _, name := range c.QueryArray("require") {
		switch dataset.Metric(name) {
		case dataset.MetricMassBalance:
			pred.MassBalance = dataset.RequirePresent
		case dataset.MetricThicknessChange:
			pred.ThicknessChange = dataset.RequirePresent
		case dataset.MetricLength:
			pred.Length = dataset.RequirePresent
		case dataset.MetricArea:
			pred.Area = dataset.RequirePresent
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid require value: " + name})
			return pred, false
		}
	}

	return pred, true
}

// codesFromQuery parses a repeated attribute-code parameter. No values at all
// is the wildcard and yields an empty slice.
func codesFromQuery(c *gin.Context, name string) ([]dataset.Code, bool) {
	values := c.QueryArray(name)
	codes := make([]dataset.Code, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || dataset.Code(n) < dataset.CodeMin || dataset.Code(n) > dataset.CodeMax {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " code: " + v})
			return nil, false
		}
		codes = append(codes, dataset.Code(n))
	}
	return codes, true
}
