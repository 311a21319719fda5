package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/report"
	"github.com/temirov/quakeset/internal/snapshot"
)

const (
	healthRoutePathConstant        = "/health"
	summaryRoutePathConstant       = "/api/v1/summary"
	metricsRoutePathConstant       = "/api/v1/metrics"
	foldsRoutePathConstant         = "/api/v1/folds"
	reportRoutePathConstant        = "/api/v1/report"
	snapshotsRoutePathConstant     = "/api/v1/snapshots"
	snapshotRoutePathConstant      = "/api/v1/snapshots/:id"
	snapshotIdentifierParamName    = "id"
	healthStatusValueConstant      = "ok"
	markdownContentTypeConstant    = "text/markdown; charset=utf-8"
	shutdownGracePeriodConstant    = 5 * time.Second
	readHeaderTimeoutConstant      = 5 * time.Second
	requestCompletedMessage        = "request completed"
	serverListeningMessageConstant = "http server listening"
	serverStoppedMessageConstant   = "http server stopped"
	logFieldListenAddressConstant  = "address"
	logFieldRequestMethodConstant  = "method"
	logFieldRequestPathConstant    = "path"
	logFieldResponseStatusConstant = "status"
	logFieldRequestDurationName    = "duration"
)

// SnapshotReader describes the snapshot store operations the server depends on.
type SnapshotReader interface {
	LoadDataset(executionContext context.Context, snapshotIdentifier string) (snapshot.Dataset, error)
	LoadLatest(executionContext context.Context) (snapshot.Dataset, error)
	ListSnapshots(executionContext context.Context) ([]snapshot.Descriptor, error)
}

type healthResponse struct {
	Status string `json:"status"`
}

type summaryResponse struct {
	SnapshotIdentifier string    `json:"snapshot_id"`
	CreatedAt          time.Time `json:"created_at"`
	TotalEvents        int       `json:"total_events"`
	RealEvents         int       `json:"real_events"`
	SyntheticEvents    int       `json:"synthetic_events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves dataset snapshots over HTTP.
type Server struct {
	snapshotReader SnapshotReader
	foldWindows    []catalog.FoldWindow
	logger         *zap.Logger
	engine         *gin.Engine
}

// NewServer wires the HTTP routes over the provided snapshot reader.
func NewServer(snapshotReader SnapshotReader, foldWindows []catalog.FoldWindow, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(foldWindows) == 0 {
		foldWindows = catalog.DefaultFoldWindows()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	serverInstance := &Server{
		snapshotReader: snapshotReader,
		foldWindows:    foldWindows,
		logger:         logger,
		engine:         engine,
	}

	engine.Use(serverInstance.requestLoggingMiddleware(), gin.Recovery())

	engine.GET(healthRoutePathConstant, serverInstance.handleHealth)
	engine.GET(summaryRoutePathConstant, serverInstance.handleSummary)
	engine.GET(metricsRoutePathConstant, serverInstance.handleMetrics)
	engine.GET(foldsRoutePathConstant, serverInstance.handleFolds)
	engine.GET(reportRoutePathConstant, serverInstance.handleReport)
	engine.GET(snapshotsRoutePathConstant, serverInstance.handleSnapshotList)
	engine.GET(snapshotRoutePathConstant, serverInstance.handleSnapshot)

	return serverInstance
}

// Handler exposes the underlying HTTP handler.
func (serverInstance *Server) Handler() http.Handler {
	return serverInstance.engine
}

// Run serves requests on the provided address until the context is cancelled,
// then shuts the server down gracefully.
func (serverInstance *Server) Run(executionContext context.Context, listenAddress string) error {
	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           serverInstance.engine,
		ReadHeaderTimeout: readHeaderTimeoutConstant,
	}

	listenErrors := make(chan error, 1)
	go func() {
		serverInstance.logger.Info(serverListeningMessageConstant, zap.String(logFieldListenAddressConstant, listenAddress))
		listenErrors <- httpServer.ListenAndServe()
	}()

	select {
	case listenError := <-listenErrors:
		if errors.Is(listenError, http.ErrServerClosed) {
			return nil
		}
		return listenError
	case <-executionContext.Done():
	}

	shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownGracePeriodConstant)
	defer cancelShutdown()

	shutdownError := httpServer.Shutdown(shutdownContext)
	serverInstance.logger.Info(serverStoppedMessageConstant, zap.String(logFieldListenAddressConstant, listenAddress))
	return shutdownError
}

func (serverInstance *Server) requestLoggingMiddleware() gin.HandlerFunc {
	return func(requestContext *gin.Context) {
		requestStart := time.Now()
		requestContext.Next()
		serverInstance.logger.Info(
			requestCompletedMessage,
			zap.String(logFieldRequestMethodConstant, requestContext.Request.Method),
			zap.String(logFieldRequestPathConstant, requestContext.Request.URL.Path),
			zap.Int(logFieldResponseStatusConstant, requestContext.Writer.Status()),
			zap.Duration(logFieldRequestDurationName, time.Since(requestStart)),
		)
	}
}

func (serverInstance *Server) handleHealth(requestContext *gin.Context) {
	requestContext.JSON(http.StatusOK, healthResponse{Status: healthStatusValueConstant})
}

func (serverInstance *Server) handleSummary(requestContext *gin.Context) {
	dataset, loadError := serverInstance.loadLatest(requestContext)
	if loadError != nil {
		return
	}

	requestContext.JSON(http.StatusOK, summaryResponse{
		SnapshotIdentifier: dataset.Identifier,
		CreatedAt:          dataset.CreatedAt,
		TotalEvents:        dataset.Metrics.TotalEvents,
		RealEvents:         dataset.Metrics.RealEvents,
		SyntheticEvents:    dataset.Metrics.SyntheticEvents,
	})
}

func (serverInstance *Server) handleMetrics(requestContext *gin.Context) {
	dataset, loadError := serverInstance.loadLatest(requestContext)
	if loadError != nil {
		return
	}

	requestContext.JSON(http.StatusOK, dataset.Metrics)
}

func (serverInstance *Server) handleFolds(requestContext *gin.Context) {
	dataset, loadError := serverInstance.loadLatest(requestContext)
	if loadError != nil {
		return
	}

	requestContext.JSON(http.StatusOK, dataset.Metrics.FoldEventCounts)
}

func (serverInstance *Server) handleReport(requestContext *gin.Context) {
	dataset, loadError := serverInstance.loadLatest(requestContext)
	if loadError != nil {
		return
	}

	document := report.BuildDocument(dataset.Events, serverInstance.foldWindows)
	requestContext.Data(http.StatusOK, markdownContentTypeConstant, []byte(report.Render(document)))
}

func (serverInstance *Server) handleSnapshotList(requestContext *gin.Context) {
	descriptors, listError := serverInstance.snapshotReader.ListSnapshots(requestContext.Request.Context())
	if listError != nil {
		requestContext.JSON(http.StatusInternalServerError, errorResponse{Error: listError.Error()})
		return
	}

	requestContext.JSON(http.StatusOK, descriptors)
}

func (serverInstance *Server) handleSnapshot(requestContext *gin.Context) {
	snapshotIdentifier := requestContext.Param(snapshotIdentifierParamName)

	dataset, loadError := serverInstance.snapshotReader.LoadDataset(requestContext.Request.Context(), snapshotIdentifier)
	if loadError != nil {
		requestContext.JSON(http.StatusNotFound, errorResponse{Error: loadError.Error()})
		return
	}

	requestContext.JSON(http.StatusOK, dataset)
}

func (serverInstance *Server) loadLatest(requestContext *gin.Context) (snapshot.Dataset, error) {
	dataset, loadError := serverInstance.snapshotReader.LoadLatest(requestContext.Request.Context())
	if loadError != nil {
		if errors.Is(loadError, snapshot.ErrNoSnapshots) {
			requestContext.JSON(http.StatusNotFound, errorResponse{Error: loadError.Error()})
			return snapshot.Dataset{}, loadError
		}
		requestContext.JSON(http.StatusInternalServerError, errorResponse{Error: loadError.Error()})
		return snapshot.Dataset{}, loadError
	}

	return dataset, nil
}
