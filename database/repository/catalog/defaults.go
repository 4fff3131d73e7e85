package catalogRepo

import "homeserve/models"

// DefaultServices is the catalogue a fresh deployment starts with.
var DefaultServices = []models.Service{
	{Name: "Cleaning", Price: 50, Description: "Standard home cleaning", Icon: "broom"},
	{Name: "Plumbing", Price: 80, Description: "Leaks, blockages and fittings", Icon: "wrench"},
	{Name: "Electrical", Price: 90, Description: "Wiring, sockets and lighting", Icon: "bolt"},
	{Name: "Gardening", Price: 40, Description: "Lawn and garden care", Icon: "leaf"},
	{Name: "Painting", Price: 120, Description: "Interior and exterior painting", Icon: "brush"},
	{Name: "HVAC", Price: 150, Description: "Heating and cooling service", Icon: "fan"},
}
