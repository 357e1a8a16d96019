/*
go-openpose provides human pose estimation in Go using the OpenPose body
keypoint network run through OpenCV's DNN module via GoCV.

A pre-trained TensorFlow frozen graph (graph_opt.pb) is loaded once into a
Runtime.  Each image is converted into a 368x368 input blob, passed through the
network and the resulting heatmap Tensor is decoded into the 19 BodyPart
keypoints by the postprocess package.  The render package draws the skeleton
formed by the PosePairs whose keypoints were both detected.

See example code and usage in the examples subdirectory.
*/
package openpose
