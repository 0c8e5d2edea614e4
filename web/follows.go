package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type followRequest struct {
	Object   string `json:"object"`
	Follower string `json:"follower"`
	Accept   *bool  `json:"accept"`
}

// handleCreateFollow opens a follow request from the acting author to the
// object author and pushes it to the object's home node.
func (s *Server) handleCreateFollow(c *gin.Context) {
	viewer := s.viewer(c)
	if viewer == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return
	}

	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object is required"})
		return
	}

	follow, err := s.Follows.RequestFollow(viewer.URL, req.Object)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"type":   "follow",
		"actor":  follow.FollowerURL,
		"object": follow.FollowedURL,
		"status": follow.Status,
	})
}

// handleRespondFollow answers a pending follow request aimed at the acting
// author.
func (s *Server) handleRespondFollow(c *gin.Context) {
	viewer := s.viewer(c)
	if viewer == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return
	}

	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Follower == "" || req.Accept == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "follower and accept are required"})
		return
	}

	if err := s.Follows.RespondToFollow(req.Follower, viewer.URL, *req.Accept); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "responded"})
}

// handleDeleteFollow withdraws the acting author's follow of the object.
func (s *Server) handleDeleteFollow(c *gin.Context) {
	viewer := s.viewer(c)
	if viewer == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return
	}

	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object is required"})
		return
	}

	if err := s.Follows.Unfollow(viewer.URL, req.Object); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}
