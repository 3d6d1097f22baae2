package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/logger"
)

// Attribute locations follow gpu.Semantic slots.
const defaultVertexShader = `
#version 410 core

layout (location = 0) in vec3 a_location;
layout (location = 1) in vec3 a_normal;
layout (location = 4) in vec4 a_color;
layout (location = 8) in vec2 a_texCoord0;

uniform mat4 u_model;
uniform mat4 u_mvp;
uniform mat4 u_normalMatrix;

out vec3 v_position;
out vec3 v_normal;
out vec4 v_color;
out vec2 v_texCoord;

void main() {
	v_position = (u_model * vec4(a_location, 1.0)).xyz;
	v_normal = mat3(u_normalMatrix) * a_normal;
	v_color = a_color;
	v_texCoord = a_texCoord0;
	gl_Position = u_mvp * vec4(a_location, 1.0);
}
`

const defaultFragmentShader = `
#version 410 core

const int MAX_LIGHTS = 8;

in vec3 v_position;
in vec3 v_normal;
in vec4 v_color;
in vec2 v_texCoord;

uniform vec3 u_cameraPos;
uniform vec4 u_ambient;
uniform vec4 u_diffuse;
uniform vec4 u_specular;
uniform vec4 u_emission;
uniform float u_shininess;
uniform float u_opacity;
uniform int u_lit;
uniform int u_normalScaling;

uniform int u_lightCount;
uniform vec4 u_lightPositions[MAX_LIGHTS];
uniform vec3 u_lightColors[MAX_LIGHTS];
uniform vec3 u_lightAttenuations[MAX_LIGHTS];

uniform int u_textureCount;
uniform sampler2D u_texture0;

out vec4 FragColor;

void main() {
	vec4 base = vec4(u_diffuse.rgb, 1.0);
	if (u_textureCount > 0) {
		base *= texture(u_texture0, v_texCoord);
	}
	// Unset color arrays read as (0, 0, 0, 1).
	if (v_color.rgb != vec3(0.0)) {
		base *= v_color;
	}

	vec3 color = base.rgb;
	if (u_lit == 1) {
		vec3 n = u_normalScaling == 0 ? v_normal : normalize(v_normal);
		vec3 view = normalize(u_cameraPos - v_position);
		color = u_ambient.rgb * base.rgb + u_emission.rgb;
		for (int i = 0; i < u_lightCount && i < MAX_LIGHTS; i++) {
			vec4 p = u_lightPositions[i];
			vec3 toLight = p.xyz;
			float att = 1.0;
			if (p.w != 0.0) {
				toLight = p.xyz - v_position;
				float d = length(toLight);
				vec3 k = u_lightAttenuations[i];
				att = 1.0 / max(k.x + k.y * d + k.z * d * d, 1.0);
			}
			vec3 l = normalize(toLight);
			float diff = max(dot(n, l), 0.0);
			float spec = 0.0;
			if (diff > 0.0 && u_shininess > 0.0) {
				spec = pow(max(dot(n, normalize(l + view)), 0.0), u_shininess);
			}
			color += att * u_lightColors[i] * (diff * base.rgb + spec * u_specular.rgb);
		}
	}
	FragColor = vec4(color, base.a * u_opacity);
}
`

// NewDefaultProgram compiles the lit program used for nodes whose material
// names no program, and for pure color nodes.
func NewDefaultProgram() (*material.BasicProgram, error) {
	id, err := CompileProgram(defaultVertexShader, defaultFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("default program: %w", err)
	}
	logger.Debug("shader program created", zap.Uint32("program", id))
	return material.NewBasicProgram("default", id), nil
}

// DeleteProgram releases a program created by this package.
func DeleteProgram(p *material.BasicProgram) {
	if p != nil && p.ID() != 0 {
		gl.DeleteProgram(p.ID())
	}
}
