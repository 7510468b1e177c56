package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ohadbarr1/dobby/internal/models"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"service": "dobby"}))
}

func (s *Server) listFamiliesHandler(w http.ResponseWriter, r *http.Request) {
	families, err := s.store.AllFamilies()
	if err != nil {
		slog.Error("listFamiliesHandler: store error", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list families"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(families))
}

// createFamilyRequest is the POST /families payload.
type createFamilyRequest struct {
	Name           string `json:"name"`
	ChatID         string `json:"chat_id"`
	Timezone       string `json:"timezone,omitempty"`
	BriefingHour   int    `json:"briefing_hour,omitempty"`
	BriefingMinute int    `json:"briefing_minute,omitempty"`
}

func (s *Server) createFamilyHandler(w http.ResponseWriter, r *http.Request) {
	var req createFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Name == "" || req.ChatID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("name and chat_id are required"))
		return
	}

	existing, err := s.store.FamilyByChatID(req.ChatID)
	if err != nil {
		slog.Error("createFamilyHandler: lookup error", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to check existing family"))
		return
	}
	if existing != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error("Family with this chat_id already registered"))
		return
	}

	family := &models.Family{
		Name:           req.Name,
		ChatID:         req.ChatID,
		Timezone:       req.Timezone,
		BriefingHour:   req.BriefingHour,
		BriefingMinute: req.BriefingMinute,
	}
	if err := s.store.CreateFamily(family); err != nil {
		slog.Error("createFamilyHandler: create error", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create family"))
		return
	}

	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Family registered successfully", family))
}

// familyFromPath resolves the {id} path segment to a family, writing the
// error response itself when the family cannot be served.
func (s *Server) familyFromPath(w http.ResponseWriter, r *http.Request) *models.Family {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid family ID"))
		return nil
	}
	family, err := s.store.FamilyByID(id)
	if err != nil {
		slog.Error("familyFromPath: store error", "family", id, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get family"))
		return nil
	}
	if family == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Family not found"))
		return nil
	}
	return family
}

func (s *Server) getFamilyHandler(w http.ResponseWriter, r *http.Request) {
	family := s.familyFromPath(w, r)
	if family == nil {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(family))
}

// updateFamilyRequest is the PATCH /families/{id} payload. Pointer fields
// distinguish "not provided" from zero values.
type updateFamilyRequest struct {
	Name           *string `json:"name,omitempty"`
	Timezone       *string `json:"timezone,omitempty"`
	BriefingHour   *int    `json:"briefing_hour,omitempty"`
	BriefingMinute *int    `json:"briefing_minute,omitempty"`
	AIMode         *bool   `json:"ai_mode,omitempty"`
}

func (s *Server) updateFamilyHandler(w http.ResponseWriter, r *http.Request) {
	family := s.familyFromPath(w, r)
	if family == nil {
		return
	}

	var req updateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if req.Name != nil {
		family.Name = *req.Name
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid timezone"))
			return
		}
		family.Timezone = *req.Timezone
	}
	if req.BriefingHour != nil {
		if *req.BriefingHour < 0 || *req.BriefingHour > 23 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("briefing_hour must be 0-23"))
			return
		}
		family.BriefingHour = *req.BriefingHour
	}
	if req.BriefingMinute != nil {
		if *req.BriefingMinute < 0 || *req.BriefingMinute > 59 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("briefing_minute must be 0-59"))
			return
		}
		family.BriefingMinute = *req.BriefingMinute
	}
	if req.AIMode != nil {
		family.AIMode = *req.AIMode
	}

	if err := s.store.UpdateFamily(family); err != nil {
		slog.Error("updateFamilyHandler: store error", "family", family.ID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update family"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Family updated successfully", family))
}

func (s *Server) listMembersHandler(w http.ResponseWriter, r *http.Request) {
	family := s.familyFromPath(w, r)
	if family == nil {
		return
	}
	members, err := s.store.MembersByFamily(family.ID)
	if err != nil {
		slog.Error("listMembersHandler: store error", "family", family.ID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list members"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(members))
}

// addMemberRequest is the POST /families/{id}/members payload.
type addMemberRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role,omitempty"`
}

func (s *Server) addMemberHandler(w http.ResponseWriter, r *http.Request) {
	family := s.familyFromPath(w, r)
	if family == nil {
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("name and phone are required"))
		return
	}
	if req.Role != "" && req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("role must be admin or member"))
		return
	}

	existing, err := s.store.MemberByPhone(family.ID, req.Phone)
	if err != nil {
		slog.Error("addMemberHandler: lookup error", "family", family.ID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to check existing member"))
		return
	}
	if existing != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error("Member with this phone already exists"))
		return
	}

	member := &models.FamilyMember{
		FamilyID: family.ID,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	}
	if err := s.store.CreateMember(member); err != nil {
		slog.Error("addMemberHandler: create error", "family", family.ID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to add member"))
		return
	}

	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Member added successfully", member))
}

func (s *Server) deleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	family := s.familyFromPath(w, r)
	if family == nil {
		return
	}

	memberID, err := strconv.ParseInt(r.PathValue("memberID"), 10, 64)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid member ID"))
		return
	}

	members, err := s.store.MembersByFamily(family.ID)
	if err != nil {
		slog.Error("deleteMemberHandler: list error", "family", family.ID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to check member"))
		return
	}
	found := false
	for _, m := range members {
		if m.ID == memberID {
			found = true
			break
		}
	}
	if !found {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Member not found"))
		return
	}

	if err := s.store.DeleteMember(memberID); err != nil {
		slog.Error("deleteMemberHandler: delete error", "member", memberID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete member"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Member deleted successfully", nil))
}
