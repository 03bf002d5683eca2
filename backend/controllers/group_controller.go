package controllers

import (
	"dailytracker/backend/middleware"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GroupController struct {
	DB     *gorm.DB
	Groups *services.GroupService
	Gate   *services.Gate
	Audit  *services.AuditService
	Mailer utils.Mailer
}

func NewGroupController(db *gorm.DB, groups *services.GroupService, gate *services.Gate, audit *services.AuditService, mailer utils.Mailer) *GroupController {
	return &GroupController{DB: db, Groups: groups, Gate: gate, Audit: audit, Mailer: mailer}
}

// List returns the groups the caller belongs to. Super admins can pass
// all=true to page through every group.
func (gc *GroupController) List(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	if c.QueryBool("all") {
		if err := gc.Gate.RequireSuperAdmin(p, "groups:list_all"); err != nil {
			return utils.ServiceError(c, err)
		}
		groups, err := gc.Groups.List(c.QueryInt("limit", 50), c.QueryInt("offset", 0))
		if err != nil {
			return utils.ServiceError(c, err)
		}
		return utils.Success(c, fiber.StatusOK, groups)
	}

	groups, err := gc.Groups.UserGroups(p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, groups)
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
}

// Create makes a new group with the caller as owner and first member.
func (gc *GroupController) Create(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	group, err := gc.Groups.Create(req.Name, req.Description, req.Timezone, p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = gc.Audit.LogEvent(p.UserID, "create_group", "group", group.ID,
		map[string]interface{}{"name": group.Name}, c.IP())

	return utils.Success(c, fiber.StatusCreated, group)
}

// Get returns one group; members only.
func (gc *GroupController) Get(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	if err := gc.Gate.RequireMember(p, uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}

	group, err := gc.Groups.GetByID(uint(groupID))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, group)
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Timezone    *string `json:"timezone"`
}

// Update edits group metadata; owner only.
func (gc *GroupController) Update(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	if err := gc.Gate.RequireOwner(p, uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}

	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	group, err := gc.Groups.Update(uint(groupID), req.Name, req.Description, req.Timezone)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = gc.Audit.LogEvent(p.UserID, "update_group", "group", group.ID, nil, c.IP())

	return utils.Success(c, fiber.StatusOK, group)
}

// Delete soft-deletes a group; owner only.
func (gc *GroupController) Delete(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	if err := gc.Gate.RequireOwner(p, uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}
	if err := gc.Groups.SoftDelete(uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}

	_ = gc.Audit.LogEvent(p.UserID, "delete_group", "group", uint(groupID), nil, c.IP())

	return utils.Message(c, "group deleted")
}

// ListMembers returns the group's active membership; members only.
func (gc *GroupController) ListMembers(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	if err := gc.Gate.RequireMember(p, uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}

	members, err := gc.Groups.ListMembers(uint(groupID))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, members)
}

type addMemberRequest struct {
	Email  string `json:"email"`
	UserID uint   `json:"user_id"`
}

// AddMember adds a user to the group by email or ID; owner only.
func (gc *GroupController) AddMember(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	if err := gc.Gate.RequireOwner(p, uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}

	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	var member interface{}
	if req.Email != "" {
		m, err := gc.Groups.AddMemberByEmail(uint(groupID), req.Email)
		if err != nil {
			return utils.ServiceError(c, err)
		}
		member = m
	} else if req.UserID != 0 {
		m, err := gc.Groups.AddMember(uint(groupID), req.UserID)
		if err != nil {
			return utils.ServiceError(c, err)
		}
		member = m
	} else {
		return utils.ServiceError(c, services.NewValidation("email or user_id is required"))
	}

	_ = gc.Audit.LogEvent(p.UserID, "add_member", "group", uint(groupID),
		map[string]interface{}{"email": req.Email, "user_id": req.UserID}, c.IP())

	return utils.Success(c, fiber.StatusCreated, member)
}

// RemoveMember removes a member; owner only. The owner themselves
// cannot be removed while they still own the group.
func (gc *GroupController) RemoveMember(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}

	// Members may leave on their own; removing anyone else takes the
	// owner.
	if uint(userID) != p.UserID {
		if err := gc.Gate.RequireOwner(p, uint(groupID)); err != nil {
			return utils.ServiceError(c, err)
		}
	}

	if err := gc.Groups.RemoveMember(uint(groupID), uint(userID)); err != nil {
		return utils.ServiceError(c, err)
	}

	_ = gc.Audit.LogEvent(p.UserID, "remove_member", "group", uint(groupID),
		map[string]interface{}{"user_id": userID}, c.IP())

	return utils.Message(c, "member removed")
}

type transferOwnershipRequest struct {
	NewOwnerID uint `json:"new_owner_id"`
}

// TransferOwnership hands the group to another current member. The
// previous owner stays on as a regular member.
func (gc *GroupController) TransferOwnership(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}

	var req transferOwnershipRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	group, err := gc.Groups.TransferOwnership(uint(groupID), req.NewOwnerID, p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = gc.Audit.LogEvent(p.UserID, "transfer_ownership", "group", group.ID,
		map[string]interface{}{"new_owner_id": req.NewOwnerID}, c.IP())

	return utils.Success(c, fiber.StatusOK, group)
}
