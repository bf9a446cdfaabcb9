package controller

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abdullahkazmii/ragserver/models"
	"github.com/abdullahkazmii/ragserver/services"
)

// RAGController handles the HTTP requests for the RAG API. It depends on
// the service layer to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
	sessions   *services.SessionStore
	evaluator  *services.RAGEvaluator
	websites   *services.WebsiteExtractor
}

// NewRAGController is a constructor function that creates a new
// RAGController. This is called from main.go to inject the dependencies.
func NewRAGController(service services.RAGService, sessions *services.SessionStore, evaluator *services.RAGEvaluator, websites *services.WebsiteExtractor) *RAGController {
	return &RAGController{
		ragService: service,
		sessions:   sessions,
		evaluator:  evaluator,
		websites:   websites,
	}
}

// IngestText is the Gin handler for POST /api/v1/documents. It accepts
// raw text and ingests it into the knowledge base.
func (c *RAGController) IngestText(ctx *gin.Context) {
	var req models.IngestTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Field 'text' must not be empty"})
		return
	}

	source := models.DocumentSource{
		Type: req.SourceType,
		Name: req.SourceName,
	}
	if source.Type == "" {
		source.Type = models.SourceTypeText
	}
	if source.Name == "" {
		source.Name = "direct_input"
	}

	added, err := c.ragService.IngestDocument(ctx.Request.Context(), req.Text, source)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.IngestResponse{
			Message: "Failed to ingest document",
			Error:   err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Message:     "Document ingested successfully",
		SourceType:  source.Type,
		SourceName:  source.Name,
		ChunksAdded: added,
	})
}

// UploadDocument is the Gin handler for POST /api/v1/documents/upload.
// It accepts a multipart file (.pdf, .txt or .md), extracts its text and
// ingests it.
func (c *RAGController) UploadDocument(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'file' upload: " + err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not open uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	var text string
	sourceType := models.SourceTypeText
	switch ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext {
	case ".pdf":
		sourceType = models.SourceTypePDF
		text, err = services.ExtractPDF(file)
	case ".txt", ".md":
		var content []byte
		content, err = io.ReadAll(file)
		text = string(content)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type: " + ext})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract text from file: " + err.Error()})
		return
	}

	source := models.DocumentSource{Type: sourceType, Name: fileHeader.Filename}
	added, err := c.ragService.IngestDocument(ctx.Request.Context(), text, source)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.IngestResponse{
			Message: "Failed to ingest document",
			Error:   err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Message:     "Document ingested successfully",
		SourceType:  source.Type,
		SourceName:  source.Name,
		ChunksAdded: added,
	})
}

// IngestWebsite is the Gin handler for POST /api/v1/documents/website.
// It scrapes the given URL and ingests the page text under the page
// title.
func (c *RAGController) IngestWebsite(ctx *gin.Context) {
	var req models.IngestWebsiteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Field 'url' must not be empty"})
		return
	}

	text, title, err := c.websites.Extract(ctx.Request.Context(), req.URL)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract website content: " + err.Error()})
		return
	}

	source := models.DocumentSource{Type: models.SourceTypeWebsite, Name: title}
	added, err := c.ragService.IngestDocument(ctx.Request.Context(), text, source)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.IngestResponse{
			Message: "Failed to ingest website",
			Error:   err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Message:     "Website ingested successfully",
		SourceType:  source.Type,
		SourceName:  source.Name,
		ChunksAdded: added,
	})
}

// GetDocuments is the Gin handler for GET /api/v1/documents. With a
// ?source= query parameter it returns only the chunks of that source.
func (c *RAGController) GetDocuments(ctx *gin.Context) {
	var (
		docs []models.StoredDocument
		err  error
	)
	if source := ctx.Query("source"); source != "" {
		docs, err = c.ragService.GetDocumentsBySource(ctx.Request.Context(), source)
	} else {
		docs, err = c.ragService.GetAllDocuments(ctx.Request.Context())
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documents"})
		return
	}
	if docs == nil {
		docs = []models.StoredDocument{}
	}

	ctx.JSON(http.StatusOK, models.DocumentsResponse{Count: len(docs), Documents: docs})
}

// ClearDocuments is the Gin handler for DELETE /api/v1/documents. It
// removes every record from the knowledge base and reports how many
// were deleted; an already empty collection is a success with zero
// deletions.
func (c *RAGController) ClearDocuments(ctx *gin.Context) {
	deleted, err := c.ragService.ClearKnowledgeBase(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear knowledge base"})
		return
	}

	ctx.JSON(http.StatusOK, models.DeleteResponse{
		Message: "Knowledge base cleared",
		Deleted: deleted,
	})
}

// GetStats is the Gin handler for GET /api/v1/stats.
func (c *RAGController) GetStats(ctx *gin.Context) {
	stats, err := c.ragService.GetSystemStats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read system stats"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// QueryRAG is the Gin handler for POST /api/v1/query. It runs the full
// retrieve-then-generate pipeline and records the exchange in the chat
// session. A pipeline failure still answers 200 with the apologetic
// fallback payload and the error field set, so the client surface never
// crashes on a broken remote call.
func (c *RAGController) QueryRAG(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Field 'query' must not be empty"})
		return
	}

	includeWeb := req.IncludeWebSearch != nil && *req.IncludeWebSearch
	sessionID := c.sessions.Ensure(req.SessionID)
	c.sessions.Append(sessionID, models.RoleUser, req.Query, nil)

	result, err := c.ragService.GenerateResponse(ctx.Request.Context(), req.Query, includeWeb)
	response := models.QueryResponse{
		Answer:             result.Response,
		Sources:            result.Sources,
		VectorResultsCount: result.VectorResultsCount,
		WebResultsCount:    result.WebResultsCount,
		SessionID:          sessionID,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.sessions.Append(sessionID, models.RoleAssistant, result.Response, result.Sources)
	ctx.JSON(http.StatusOK, response)
}

// SearchWeb is the Gin handler for POST /api/v1/search. It exposes raw
// web search results without touching the knowledge base.
func (c *RAGController) SearchWeb(ctx *gin.Context) {
	var req models.WebSearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Field 'query' must not be empty"})
		return
	}

	results, err := c.ragService.SearchWeb(ctx.Request.Context(), req.Query, req.Num)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Web search failed: " + err.Error()})
		return
	}
	if results == nil {
		results = []models.WebResult{}
	}

	ctx.JSON(http.StatusOK, models.WebSearchResponse{Count: len(results), Results: results})
}

// Evaluate is the Gin handler for POST /api/v1/evaluate. It runs the
// heuristic evaluation over the given questions and returns the report.
func (c *RAGController) Evaluate(ctx *gin.Context) {
	var req models.EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(req.Questions) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Field 'questions' must not be empty"})
		return
	}

	includeWeb := req.IncludeWebSearch != nil && *req.IncludeWebSearch
	report, err := c.evaluator.RunEvaluation(ctx.Request.Context(), req.Questions, includeWeb)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation failed: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// GetSession is the Gin handler for GET /api/v1/sessions/:id.
func (c *RAGController) GetSession(ctx *gin.Context) {
	sessionID := ctx.Param("id")
	messages, ok := c.sessions.History(sessionID)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown session: " + sessionID})
		return
	}

	ctx.JSON(http.StatusOK, models.SessionHistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

// DeleteSession is the Gin handler for DELETE /api/v1/sessions/:id.
func (c *RAGController) DeleteSession(ctx *gin.Context) {
	sessionID := ctx.Param("id")
	if !c.sessions.Delete(sessionID) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown session: " + sessionID})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}
