package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TripsController struct {
	reader TripReader
}

func NewTripsController(reader TripReader) *TripsController {
	return &TripsController{
		reader: reader,
	}
}

func (controller *TripsController) GetAllTrips(c *gin.Context) {
	trips, err := controller.reader.ListTrips()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"trips": trips, "count": len(trips)})
}

func (controller *TripsController) GetTripDives(c *gin.Context) {
	tripID, err := pathID(c, "id")
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	if _, err := controller.reader.GetTrip(tripID); err != nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}

	dives, err := controller.reader.GetDivesForTrip(tripID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"dives": dives, "count": len(dives)})
}

func (controller *TripsController) GetDive(c *gin.Context) {
	diveID, err := pathID(c, "id")
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid dive id"})
		return
	}

	dive, err := controller.reader.GetDiveWithChildren(diveID)
	if err != nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "dive not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, dive)
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
