/*
Copyright (C) 2026 the monsoon-pod authors.
This file is part of monsoon-pod.

monsoon-pod is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

monsoon-pod is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with monsoon-pod.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package monsoonpod computes a moist-thermodynamic plume buoyancy
// diagnostic from atmospheric profile data and relates it to observed
// precipitation through binned statistics over geographic regions and
// calendar months.
//
// The pipeline takes temperature and specific humidity profiles on
// pressure levels, together with surface pressure and co-located
// precipitation, and produces for every (time, lat, lon) point the
// lower-tropospheric buoyancy measure B_L and its CAPE-like and
// subsaturation components. A scatter-add accumulator then builds
// conditional precipitation statistics on bins of B_L (and jointly on
// SUBSAT and CAPE) for each configured region and month.
package monsoonpod

// Version is the version of this library.
const Version = "1.1.0"

// Website is the home of this library.
const Website = "https://github.com/savannahferretti/monsoon-pod"
