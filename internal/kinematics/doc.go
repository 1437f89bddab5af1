// Package kinematics holds the hexapod leg geometry and the forward
// kinematics used to place each leg's joints in the body frame.
//
// Geometry values are validated once, at construction, and are read-only
// afterwards. Solve is a pure function of a LegGeometry and a set of raw
// joint angles.
package kinematics
