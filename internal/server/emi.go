package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finportal/internal/emi"
)

// calculateEMI serves the loan calculator. Missing values count as 0 and
// yield a zero plan; values that are not numbers are rejected.
func calculateEMI(c *gin.Context) {
	fieldErrors := map[string]string{}
	read := func(name string) float64 {
		raw := c.Query(name)
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fieldErrors[name] = fmt.Sprintf("%s must be a number", name)
			return 0
		}
		return v
	}

	principal := read("principal")
	rate := read("rate")
	tenure := read("tenure")
	if tenure > emi.MaxTenureYears {
		fieldErrors["tenure"] = fmt.Sprintf("tenure must be at most %d years", emi.MaxTenureYears)
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	var plan emi.Plan
	if c.Query("schedule") == "true" {
		plan = emi.Schedule(principal, rate, tenure)
	} else {
		plan = emi.Summary(principal, rate, tenure)
	}
	c.JSON(http.StatusOK, plan)
}
