package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/labstack/echo/v4"
)

// InspectResponse describes what the primary ray through a pixel hits
type InspectResponse struct {
	Hit        bool                   `json:"hit"`
	Material   string                 `json:"material"`
	Point      [3]float64             `json:"point"`
	Normal     [3]float64             `json:"normal"`
	Distance   float64                `json:"distance"`
	FrontFace  bool                   `json:"frontFace"`
	Color      [3]float64             `json:"color"` // Accumulated linear color
	Properties map[string]interface{} `json:"properties"`
}

// materialProperties lists the fields that matter for the material kind
func materialProperties(m material.Material) map[string]interface{} {
	properties := make(map[string]interface{})
	switch m.Kind {
	case material.Conductor:
		properties["color"] = [3]float64{m.Color.X, m.Color.Y, m.Color.Z}
		properties["specularity"] = m.Specularity
	case material.Dielectric:
		properties["absorbance"] = [3]float64{m.Absorbance.X, m.Absorbance.Y, m.Absorbance.Z}
		properties["n1"] = m.N1
		properties["n2"] = m.N2
	case material.Emissive:
		properties["radiance"] = [3]float64{m.Radiance.X, m.Radiance.Y, m.Radiance.Z}
	}
	return properties
}

func (s *Server) handleInspect(c echo.Context) error {
	config := s.tracer.Config()
	x, errX := strconv.Atoi(c.QueryParam("x"))
	y, errY := strconv.Atoi(c.QueryParam("y"))
	if errX != nil || errY != nil || x < 0 || y < 0 || x >= config.Width || y >= config.Height {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "x and y must be pixel coordinates inside the image"})
	}

	camera := s.tracer.Camera()
	ray := camera.PixelRay(x, y, nil, false)
	pixel := s.tracer.Resolved(x, y)

	response := InspectResponse{
		Color:      [3]float64{pixel.X, pixel.Y, pixel.Z},
		Properties: map[string]interface{}{},
	}

	hit, ok := s.tracer.Scene().NearestIntersection(ray, 0, math.Inf(1))
	if ok {
		response.Hit = true
		response.Material = hit.Material.Kind.String()
		response.Point = [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z}
		response.Normal = [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z}
		response.Distance = hit.T * ray.Direction.Length()
		response.FrontFace = hit.FrontFace
		response.Properties = materialProperties(hit.Material)
	}

	return c.JSON(http.StatusOK, response)
}
