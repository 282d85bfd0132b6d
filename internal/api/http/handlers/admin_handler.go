package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/maintenance-service/internal/api/dto"
	"github.com/fixdesk/maintenance-service/internal/service"
)

// AdminHandler exposes the directory endpoints for organizations, locations,
// vendors, and sub-admins. Route-level role middleware restricts access to
// administrative actors.
type AdminHandler struct {
	directory *service.DirectoryService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(directory *service.DirectoryService) *AdminHandler {
	return &AdminHandler{directory: directory}
}

// CreateOrganization handles POST /admin/orgs.
func (h *AdminHandler) CreateOrganization(c *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	org, err := h.directory.CreateOrganization(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": org})
}

// ListOrganizations handles GET /admin/orgs.
func (h *AdminHandler) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := h.directory.ListOrganizations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orgs})
}

// CreateLocation handles POST /admin/locations.
func (h *AdminHandler) CreateLocation(c *fiber.Ctx) error {
	var req dto.CreateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	location, err := h.directory.CreateLocation(c.UserContext(), req.OrgID, req.Name, req.Address)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": location})
}

// ListLocations handles GET /admin/locations?org_id=...
func (h *AdminHandler) ListLocations(c *fiber.Ctx) error {
	orgID := c.Query("org_id")
	if orgID == "" {
		return fiber.NewError(http.StatusBadRequest, "org_id query parameter required")
	}
	locations, err := h.directory.ListLocations(c.UserContext(), orgID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": locations})
}

// CreateVendor handles POST /admin/vendors.
func (h *AdminHandler) CreateVendor(c *fiber.Ctx) error {
	var req dto.CreateVendorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	vendor, err := h.directory.CreateVendor(c.UserContext(), req.Name, req.Email, req.Password, req.OrgIDs, req.Tier)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": vendor})
}

// GetVendor handles GET /admin/vendors/:id.
func (h *AdminHandler) GetVendor(c *fiber.Ctx) error {
	vendor, err := h.directory.GetVendor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendor})
}

// ListVendors handles GET /admin/vendors?org_id=...
func (h *AdminHandler) ListVendors(c *fiber.Ctx) error {
	orgID := c.Query("org_id")
	if orgID == "" {
		return fiber.NewError(http.StatusBadRequest, "org_id query parameter required")
	}
	vendors, err := h.directory.ListVendors(c.UserContext(), orgID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendors})
}

// SetVendorStatus handles PUT /admin/vendors/:id/status.
func (h *AdminHandler) SetVendorStatus(c *fiber.Ctx) error {
	var req dto.VendorStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	vendor, err := h.directory.SetVendorStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendor})
}

// CreateTechnician handles POST /admin/technicians.
func (h *AdminHandler) CreateTechnician(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	tech, err := h.directory.CreateTechnician(c.UserContext(), req.VendorID, req.Name, req.Email, req.Phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": tech})
}

// ListTechnicians handles GET /admin/technicians?vendor_id=...
func (h *AdminHandler) ListTechnicians(c *fiber.Ctx) error {
	vendorID := c.Query("vendor_id")
	if vendorID == "" {
		return fiber.NewError(http.StatusBadRequest, "vendor_id query parameter required")
	}
	techs, err := h.directory.ListTechnicians(c.UserContext(), vendorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": techs})
}

// CreateSubAdmin handles POST /admin/subadmins.
func (h *AdminHandler) CreateSubAdmin(c *fiber.Ctx) error {
	var req dto.CreateSubAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	sub, err := h.directory.CreateSubAdmin(c.UserContext(), service.SubAdminInput{
		OrgID:               req.OrgID,
		Name:                req.Name,
		Email:               req.Email,
		Password:            req.Password,
		SecurityGroup:       req.SecurityGroup,
		Permissions:         req.Permissions,
		AssignedLocationIDs: req.AssignedLocationIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sub})
}

// GetSubAdmin handles GET /admin/subadmins/:id.
func (h *AdminHandler) GetSubAdmin(c *fiber.Ctx) error {
	sub, err := h.directory.GetSubAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sub})
}

// ListSubAdmins handles GET /admin/subadmins?org_id=...
func (h *AdminHandler) ListSubAdmins(c *fiber.Ctx) error {
	orgID := c.Query("org_id")
	if orgID == "" {
		return fiber.NewError(http.StatusBadRequest, "org_id query parameter required")
	}
	subs, err := h.directory.ListSubAdmins(c.UserContext(), orgID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subs})
}

// UpdateSubAdminAccess handles PUT /admin/subadmins/:id/access.
func (h *AdminHandler) UpdateSubAdminAccess(c *fiber.Ctx) error {
	var req dto.SubAdminAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	sub, err := h.directory.UpdateSubAdminAccess(c.UserContext(), c.Params("id"), req.AssignedLocationIDs, req.LocationTierPermissions)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sub})
}
