package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

type nodeRequest struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleCreateNode registers a federation peer and triggers the author
// directory pull. An omitted password is generated and returned once in the
// creation response; list and update responses never carry it.
func (s *Server) handleCreateNode(c *gin.Context) {
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid node payload"})
		return
	}
	if req.Host == "" || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host and username are required"})
		return
	}
	generated := ""
	if req.Password == "" {
		generated = util.RandomString(32)
		req.Password = generated
	}

	node := &domain.Node{
		Name:     req.Name,
		Host:     req.Host,
		Username: req.Username,
		Password: req.Password,
		IsActive: true,
	}
	if err := s.Nodes.RegisterNode(node); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, createdNodeJSON{nodeJSON: newNodeJSON(node), Password: generated})
}

func (s *Server) handleListNodes(c *gin.Context) {
	err, nodes := s.DB.ReadAllNodes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read nodes"})
		return
	}
	out := make([]nodeJSON, 0, len(*nodes))
	for i := range *nodes {
		out = append(out, newNodeJSON(&(*nodes)[i]))
	}
	c.JSON(http.StatusOK, gin.H{"type": "nodes", "items": out})
}

func (s *Server) handleUpdateNode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid node ID"})
		return
	}
	err, node := s.DB.ReadNodeById(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
		return
	}

	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid node payload"})
		return
	}
	if req.Name != "" {
		node.Name = req.Name
	}
	if req.Username != "" {
		node.Username = req.Username
	}
	if req.Password != "" {
		node.Password = req.Password
	}

	if err := s.DB.UpdateNode(node); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update node"})
		return
	}
	c.JSON(http.StatusOK, newNodeJSON(node))
}

// handleDeleteNode deactivates the peer. Cached authors and entries stay.
func (s *Server) handleDeleteNode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid node ID"})
		return
	}
	if err := s.Nodes.DeactivateNode(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate node"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
