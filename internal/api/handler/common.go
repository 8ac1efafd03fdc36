package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/util"
	"Agora/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// paramID 解析路径中的 id，0 或非数字视为参数错误
func paramID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrParamInvalid
	}
	return id, nil
}

// bindPage 解析分页参数，缺省时使用 defaultSize
func bindPage(c *gin.Context, defaultSize int) (int, int, error) {
	var req dto.PageReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return 0, 0, service.ErrParamInvalid
	}
	if err := util.ValidateDTO(&req); err != nil {
		return 0, 0, service.ErrParamInvalid
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaultSize
	}
	return req.Page, req.PageSize, nil
}
