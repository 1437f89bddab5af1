// Package render turns robot state snapshots into operator output: console
// status lines, a PNG top view drawn with gonum/plot, and an HTML top view
// drawn with go-echarts.
package render
