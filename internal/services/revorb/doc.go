// Package revorb wraps the external revorb tool, which recomputes granule
// positions on a decoded Ogg Vorbis file in place. Like ww2ogg it is treated
// as a black box subprocess.
package revorb
