package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-service/internal/api"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
)

// CatalogAPIs groups the read side of the platform catalog.
type CatalogAPIs struct {
	Tests              *api.Tests
	TestInfo           *api.TestInfo
	Practice           *api.Practice
	Questions          *api.Questions
	QuestionSets       *api.QuestionSets
	QuestionCategories *api.QuestionCategories
	QuestionTypes      *api.QuestionTypes
	Parts              *api.Parts
	Skills             *api.Skills
	TestCategories     *api.TestCategories
}

// CatalogHandler proxies catalog reads to the platform, passing upstream
// errors through.
type CatalogHandler struct {
	BaseHandler
	apis      CatalogAPIs
	validator *validator.Validator
}

func NewCatalogHandler(apis CatalogAPIs, validator *validator.Validator, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		apis:        apis,
		validator:   validator,
	}
}

// ===== TESTS =====

// ListTests pages through the simple test listing
// @Summary List tests
// @Tags tests
// @Produce json
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Param search query string false "Search"
// @Success 200 {object} models.Page[models.TestSimple]
// @Router /tests [get]
func (h *CatalogHandler) ListTests(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	size, ok := queryInt(c, "size")
	if !ok {
		return
	}

	tests, err := h.apis.Tests.ListSimple(c.Request.Context(), page, size, c.Query("search"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tests)
}

// GetTestInfo returns the practice summary of a test
// @Summary Get test info
// @Tags tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} models.PracticeTestInfo
// @Router /tests/{id}/info [get]
func (h *CatalogHandler) GetTestInfo(c *gin.Context) {
	testID := ParseStringIDParam(c, "id")
	if testID == "" {
		return
	}

	info, err := h.apis.TestInfo.Get(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetTestParts lists the parts a test can be practiced by
// @Summary Get test parts
// @Tags tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {array} models.PracticePart
// @Router /tests/{id}/parts [get]
func (h *CatalogHandler) GetTestParts(c *gin.Context) {
	testID := ParseStringIDParam(c, "id")
	if testID == "" {
		return
	}

	parts, err := h.apis.Practice.Parts(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

// ===== QUESTIONS (admin) =====

// ListQuestions pages through questions
// @Summary List questions
// @Tags questions
// @Produce json
// @Success 200 {object} models.Page[models.Question]
// @Router /questions [get]
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	var filter api.QuestionFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	questions, err := h.apis.Questions.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion returns one question
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} models.Question
// @Router /questions/{id} [get]
func (h *CatalogHandler) GetQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	question, err := h.apis.Questions.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// ListQuestionSets pages through question sets
// @Summary List question sets
// @Tags question-sets
// @Produce json
// @Success 200 {object} models.Page[models.QuestionSet]
// @Router /question-sets [get]
func (h *CatalogHandler) ListQuestionSets(c *gin.Context) {
	var filter api.QuestionSetFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	sets, err := h.apis.QuestionSets.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sets)
}

// GetQuestionSet returns one question set
// @Summary Get question set
// @Tags question-sets
// @Produce json
// @Param id path string true "Question set ID"
// @Success 200 {object} models.QuestionSet
// @Router /question-sets/{id} [get]
func (h *CatalogHandler) GetQuestionSet(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	set, err := h.apis.QuestionSets.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// ===== LOOKUPS =====

// ListQuestionCategories
// @Summary List question categories
// @Tags catalog
// @Produce json
// @Router /question-categories [get]
func (h *CatalogHandler) ListQuestionCategories(c *gin.Context) {
	var page api.SearchPage
	if !h.bindQuery(c, &page) {
		return
	}

	categories, err := h.apis.QuestionCategories.List(c.Request.Context(), page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListQuestionTypes
// @Summary List question types
// @Tags catalog
// @Produce json
// @Router /question-types [get]
func (h *CatalogHandler) ListQuestionTypes(c *gin.Context) {
	var page api.SearchPage
	if !h.bindQuery(c, &page) {
		return
	}

	types, err := h.apis.QuestionTypes.List(c.Request.Context(), page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// ListParts
// @Summary List parts
// @Tags catalog
// @Produce json
// @Router /parts [get]
func (h *CatalogHandler) ListParts(c *gin.Context) {
	var pageable api.Pageable
	if !h.bindQuery(c, &pageable) {
		return
	}

	parts, err := h.apis.Parts.List(c.Request.Context(), c.Query("search"), pageable)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

// ListSkills
// @Summary List skills
// @Tags catalog
// @Produce json
// @Router /skills [get]
func (h *CatalogHandler) ListSkills(c *gin.Context) {
	skills, err := h.apis.Skills.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

// GetSkillByCode
// @Summary Get skill by code
// @Tags catalog
// @Produce json
// @Param code path string true "Skill code"
// @Router /skills/code/{code} [get]
func (h *CatalogHandler) GetSkillByCode(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	skill, err := h.apis.Skills.ByCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, skill)
}

// ListTestCategories
// @Summary List test categories
// @Tags catalog
// @Produce json
// @Router /test-categories [get]
func (h *CatalogHandler) ListTestCategories(c *gin.Context) {
	categories, err := h.apis.TestCategories.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// TestCategoryExists checks whether a code or name is taken
// @Summary Check test category
// @Tags catalog
// @Produce json
// @Param field path string true "code or name"
// @Param value path string true "Value to check"
// @Success 200 {object} map[string]bool
// @Router /test-categories/exists/{field}/{value} [get]
func (h *CatalogHandler) TestCategoryExists(c *gin.Context) {
	value := ParseStringIDParam(c, "value")
	if value == "" {
		return
	}

	var (
		exists bool
		err    error
	)
	switch c.Param("field") {
	case "code":
		exists, err = h.apis.TestCategories.CodeExists(c.Request.Context(), value)
	case "name":
		exists, err = h.apis.TestCategories.NameExists(c.Request.Context(), value)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid field",
			Details: "field must be code or name",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *CatalogHandler) bindQuery(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindQuery(out); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return false
	}
	if err := h.validator.Validate(out); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}
