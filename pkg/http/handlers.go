package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"prabhas.dev/medication-box-service/pkg/medbox"
	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
)

func respondError(c *gin.Context, err error) {
	if errors.Is(err, medbox.ErrInvalidArgument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// compartmentID validates the :id route param before anything touches the
// repository. Out-of-range ids answer 400 right here.
func compartmentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 || id > medbox.NumCompartments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func (rs *RestfulServer) GetStatus(c *gin.Context) {
	doc, err := rs.Box.Status.GetStatus()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}

func (rs *RestfulServer) GetCompartments(c *gin.Context) {
	compartments, err := rs.Box.Schedule.GetCompartments()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compartments)
}

// GetSchedule decomposes a compartment document back into edit-form fields,
// the one-time form population read of the dashboard.
func (rs *RestfulServer) GetSchedule(c *gin.Context) {
	id, ok := compartmentID(c)
	if !ok {
		return
	}

	compartment, err := rs.Box.Schedule.GetCompartment(id)
	if err != nil {
		respondError(c, err)
		return
	}

	form := models.ScheduleInput{
		Buzzer:    compartment.Buzzer,
		Medicines: compartment.Medicines,
	}
	if hour, minute, meridiem, ok := medbox.ParseTimeLabel(compartment.Time); ok {
		form.Hour = hour
		form.Minute = minute
		form.Meridiem = meridiem
	}
	if form.Medicines == nil {
		form.Medicines = []models.Medicine{}
	}

	c.JSON(http.StatusOK, form)
}

func (rs *RestfulServer) GetSummary(c *gin.Context) {
	statusDoc, err := rs.Box.Status.GetStatus()
	if err != nil {
		respondError(c, err)
		return
	}

	var statusFields map[string]json.RawMessage
	var status models.SystemStatus
	_ = json.Unmarshal(statusDoc, &statusFields)
	_ = json.Unmarshal(statusDoc, &status)

	summaries := make([]models.CompartmentSummary, 0, medbox.NumCompartments)
	for id := 1; id <= medbox.NumCompartments; id++ {
		compartment, err := rs.Box.Schedule.GetCompartment(id)
		if err != nil {
			respondError(c, err)
			return
		}
		summaries = append(summaries, medbox.SummarizeCompartment(id, compartment))
	}

	c.JSON(http.StatusOK, gin.H{
		"battery":      medbox.SummarizeBattery(&status, len(statusFields) > 0),
		"compartments": summaries,
	})
}

type BatteryRequest struct {
	BatteryPercentage int `json:"battery_percentage"`
}

var batteryRequestSchema = z.Struct(z.Shape{
	"BatteryPercentage": z.Int().GTE(0).LTE(100).Required(),
})

// PostStatus is the box's battery report.
func (rs *RestfulServer) PostStatus(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req BatteryRequest
	if err := batteryRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if err := rs.Box.Status.ReportBattery(req.BatteryPercentage); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated"})
}

// UpdateCompartment merges caller-supplied fields into one compartment. The
// body passes through as-is, so the box can flip medicine_taken or missed
// without knowing the rest of the document.
func (rs *RestfulServer) UpdateCompartment(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	id, ok := compartmentID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := rs.Box.Schedule.UpdateCompartment(id, body); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Compartment %d updated", id)})
}

type MedicineRow struct {
	Name    string `json:"name"`
	Tablets int    `json:"tablets"`
}

type ScheduleRequest struct {
	Hour      int           `json:"hour"`
	Minute    int           `json:"minute"`
	Meridiem  string        `json:"meridiem"`
	Buzzer    bool          `json:"buzzer"`
	Medicines []MedicineRow `json:"medicines"`
}

var scheduleRequestSchema = z.Struct(z.Shape{
	"Hour":     z.Int().GTE(1).LTE(12).Required(),
	"Minute":   z.Int().GTE(0).LTE(59).Required(),
	"Meridiem": z.String().OneOf([]string{"AM", "PM"}).Required(),
	"Buzzer":   z.Bool(),
	"Medicines": z.Slice(z.Struct(z.Shape{
		"name":    z.String(),
		"tablets": z.Int(),
	})),
})

// SaveSchedule is the caregiver's edit-form submit: a full replace of the
// compartment document.
func (rs *RestfulServer) SaveSchedule(c *gin.Context) {
	id, ok := compartmentID(c)
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := scheduleRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	input := models.ScheduleInput{
		Hour:     req.Hour,
		Minute:   req.Minute,
		Meridiem: req.Meridiem,
		Buzzer:   req.Buzzer,
	}
	for _, row := range req.Medicines {
		input.Medicines = append(input.Medicines, models.Medicine{Name: row.Name, Tablets: row.Tablets})
	}

	if err := rs.Box.Schedule.SaveSchedule(id, &input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Compartment %d saved", id)})
}

type AdminResetRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var adminResetRequestSchema = z.Struct(z.Shape{
	"Username": z.String().Required(),
	"Password": z.String().Required(),
})

// AdminReset clears all four compartments to defaults after a server-side
// credential check. System status is never touched.
func (rs *RestfulServer) AdminReset(c *gin.Context) {
	var req AdminResetRequest
	if err := adminResetRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if req.Username != rs.Cfg.AdminUsername || req.Password != rs.Cfg.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := rs.Box.Schedule.ResetCompartments(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "System Reset Complete"})
}

type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

var pushSubscribeRequestSchema = z.Struct(z.Shape{
	"Endpoint": z.String().Required(),
	"P256dh":   z.String().Required(),
	"Auth":     z.String().Required(),
})

// SubscribePush registers a browser push subscription for missed-dose
// notifications.
func (rs *RestfulServer) SubscribePush(c *gin.Context) {
	var req PushSubscribeRequest
	if err := pushSubscribeRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	doc, err := json.Marshal(models.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := rs.Box.Store.Set(store.PushRoot+"/"+uuid.NewString(), doc); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Subscribed"})
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
