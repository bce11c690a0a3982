// Package geom defines the 2D profile types shared by the profile
// generators, the edge connector and the geometry kernel.
//
// Profiles live in the XZ plane: X is the radial distance from the z axis
// and Y is the height. Points carry the connection tag of the edge that
// leaves them.
package geom
